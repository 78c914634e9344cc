package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artassist/internal/sdapi"
)

func writeScript(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
}

func TestCommandUnix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix script selection")
	}
	dir := t.TempDir()
	writeScript(t, dir, "webui.sh")

	l := &Launcher{Path: dir, Port: 7860}
	bin, args, err := l.Command()
	require.NoError(t, err)
	assert.Equal(t, "bash", bin)
	assert.Equal(t, []string{filepath.Join(dir, "webui.sh"), "--api", "--nowebui", "--port", "7860"}, args)
}

func TestCommandSplitsBootArgs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix script selection")
	}
	dir := t.TempDir()
	writeScript(t, dir, "webui.sh")

	l := &Launcher{Path: dir, Port: 8000, BootArgs: `--medvram --ckpt-dir "/models/my dir"`}
	_, args, err := l.Command()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "webui.sh"),
		"--api", "--nowebui", "--port", "8000",
		"--medvram", "--ckpt-dir", "/models/my dir",
	}, args)
}

func TestCommandMissingScript(t *testing.T) {
	l := &Launcher{Path: t.TempDir(), Port: 7860}
	_, _, err := l.Command()
	assert.Error(t, err)
}

func TestCommandMissingPath(t *testing.T) {
	l := &Launcher{Port: 7860}
	_, _, err := l.Command()
	assert.Error(t, err)

	l = &Launcher{Path: filepath.Join(t.TempDir(), "nope"), Port: 7860}
	_, _, err = l.Command()
	assert.Error(t, err)
}

type pingAPI struct {
	failures int
	calls    int
}

func (p *pingAPI) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func (p *pingAPI) Progress(context.Context) (sdapi.ProgressResponse, error) {
	return sdapi.ProgressResponse{}, nil
}
func (p *pingAPI) Img2Img(context.Context, *sdapi.Img2ImgRequest) (*sdapi.Img2ImgResponse, error) {
	return nil, errors.New("unused")
}
func (p *pingAPI) Interrupt(context.Context) error                 { return nil }
func (p *pingAPI) Options(context.Context) (sdapi.Options, error)  { return sdapi.Options{}, nil }
func (p *pingAPI) SetOptions(context.Context, sdapi.Options) error { return nil }
func (p *pingAPI) Models(context.Context) ([]sdapi.Model, error)   { return nil, nil }

func TestWaitReadyImmediate(t *testing.T) {
	api := &pingAPI{}
	err := WaitReady(context.Background(), api, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)
}

func TestWaitReadyHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &pingAPI{failures: 1 << 30}
	err := WaitReady(ctx, api, time.Minute)
	assert.Error(t, err)
}
