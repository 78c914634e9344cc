package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "artassist"}
	root.PersistentFlags().String("server", "", "")
	root.PersistentFlags().String("model", "", "")
	root.PersistentFlags().String("out-dir", "", "")
	root.PersistentFlags().BoolP("verbose", "v", false, "")
	return root
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, Init(newTestRoot()))
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:7860", s.Server.URL)
	assert.Equal(t, 2*time.Minute, s.Server.StartupTimeout)
	assert.Equal(t, 10*time.Minute, s.Server.APITimeout)
	assert.Equal(t, "waiNSFWIllustrious", s.Model.Keyword)
	assert.Equal(t, 20, s.Generation.Steps)
	assert.Equal(t, 7.0, s.Generation.CFGScale)
	assert.Equal(t, "Euler a", s.Generation.Sampler)
	assert.Equal(t, "Automatic", s.Generation.Scheduler)
	assert.Equal(t, 2048, s.Generation.MaxSide)
	assert.Equal(t, 0.4, s.Generation.CleanupStrength["medium"])
	assert.Equal(t, 0.7, s.Generation.FaceFixStrength["strong"])
	assert.Equal(t, 0.3, s.Generation.DetailConfidence)
	assert.Equal(t, 3*time.Second, s.Progress.PollInterval)
	assert.Equal(t, 10.0, s.Progress.NoiseThreshold)
	assert.Equal(t, 0.05, s.Progress.FirstPollGuard)
	assert.NotEmpty(t, s.Output.Dir, "output dir should fall back to a pictures path")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ARTASSIST_MODEL_KEYWORD", "someOtherCheckpoint")
	t.Setenv("ARTASSIST_SERVER_URL", "192.168.1.20:7860/")
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, Init(newTestRoot()))
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "someOtherCheckpoint", s.Model.Keyword)
	assert.Equal(t, "http://192.168.1.20:7860", s.Server.URL, "bare host should be normalized")
}

func TestLoadFlagOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := newTestRoot()
	require.NoError(t, root.PersistentFlags().Set("server", "http://10.0.0.5:7861"))
	require.NoError(t, Init(root))

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:7861", s.Server.URL)
}
