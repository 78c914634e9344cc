package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artassist/internal/model"
)

func touchImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sketch.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	return path
}

func parse(t *testing.T, withDetail bool, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindBatchFlags(fs, withDetail)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestBatchRequestDefaults(t *testing.T) {
	img := touchImage(t)
	fs := parse(t, true)

	req, err := BatchRequest(fs, model.TaskCleanup, img)
	require.NoError(t, err)
	assert.Equal(t, model.TaskCleanup, req.Task)
	assert.Equal(t, 1, req.Count)
	assert.Equal(t, model.StrengthMedium, req.Strength)
	assert.Equal(t, model.DetailFace, req.Detail)
	assert.Equal(t, int64(-1), req.Seed)
}

func TestBatchRequestAllFlags(t *testing.T) {
	img := touchImage(t)
	fs := parse(t, true, "--hint", "銀髪", "-n", "4", "--strength", "strong", "--detail", "face-hands", "--seed", "77")

	req, err := BatchRequest(fs, model.TaskCleanup, img)
	require.NoError(t, err)
	assert.Equal(t, "銀髪", req.Hint)
	assert.Equal(t, 4, req.Count)
	assert.Equal(t, model.StrengthStrong, req.Strength)
	assert.Equal(t, model.DetailFaceHands, req.Detail)
	assert.Equal(t, int64(77), req.Seed)
	assert.Equal(t, 3, req.ExpectedStages())
}

func TestBatchRequestFaceFixIgnoresDetail(t *testing.T) {
	img := touchImage(t)
	fs := parse(t, false, "--strength", "weak")

	req, err := BatchRequest(fs, model.TaskFaceFix, img)
	require.NoError(t, err)
	assert.Equal(t, model.DetailNone, req.Detail)
	assert.Equal(t, 2, req.ExpectedStages(), "facefix is always base pass + face refinement")
}

func TestBatchRequestInvalidStrength(t *testing.T) {
	img := touchImage(t)
	fs := parse(t, true, "--strength", "ultra")
	_, err := BatchRequest(fs, model.TaskCleanup, img)
	assert.Error(t, err)
}

func TestBatchRequestMissingImage(t *testing.T) {
	fs := parse(t, true)
	_, err := BatchRequest(fs, model.TaskCleanup, filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}
