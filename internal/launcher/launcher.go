// Package launcher starts the WebUI server process and waits for its API to
// come up.
package launcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/google/shlex"
	log "github.com/sirupsen/logrus"

	"artassist/internal/sdapi"
	"artassist/internal/util"
)

// DefaultStartupTimeout bounds the wait for the server to come up. Cold
// starts load the checkpoint, which dominates the time.
const DefaultStartupTimeout = 2 * time.Minute

const readyPollInterval = time.Second

// Launcher starts the WebUI install at Path with the API enabled.
type Launcher struct {
	Path     string // WebUI install directory
	Port     int    // port passed to the server
	BootArgs string // extra args, split shell-style
	Attach   bool   // stream process output into the log instead of detaching
}

// Command resolves the launch script and full argument list for the host OS.
// The WebUI ships webui-user.bat for Windows and webui.sh for everything
// else; the script must exist under Path.
func (l *Launcher) Command() (string, []string, error) {
	if l.Path == "" {
		return "", nil, fmt.Errorf("webui path is not configured")
	}
	if _, err := os.Stat(l.Path); err != nil {
		return "", nil, fmt.Errorf("webui path: %w", err)
	}

	var bin string
	var args []string
	if runtime.GOOS == "windows" {
		script := filepath.Join(l.Path, "webui-user.bat")
		if _, err := os.Stat(script); err != nil {
			return "", nil, fmt.Errorf("webui-user.bat not found under %s", l.Path)
		}
		bin = script
	} else {
		script := filepath.Join(l.Path, "webui.sh")
		if _, err := os.Stat(script); err != nil {
			return "", nil, fmt.Errorf("webui.sh not found under %s", l.Path)
		}
		bin = "bash"
		args = append(args, script)
	}

	args = append(args, "--api", "--nowebui", "--port", strconv.Itoa(l.Port))

	extra, err := shlex.Split(l.BootArgs)
	if err != nil {
		return "", nil, fmt.Errorf("parse boot args: %w", err)
	}
	args = append(args, extra...)
	return bin, args, nil
}

// Start launches the server process. In detached mode it returns the PID
// immediately; with Attach it blocks until the process exits, streaming its
// output lines into the log.
func (l *Launcher) Start(ctx context.Context) (int, error) {
	bin, args, err := l.Command()
	if err != nil {
		return 0, err
	}
	spec := util.CmdSpec{
		Path: bin,
		Args: args,
		Dir:  l.Path,
		// The server tries to open a browser tab on startup; disable it.
		Env: []string{"BROWSER=:", "NO_BROWSER=1"},
	}
	log.WithFields(log.Fields{"bin": bin, "dir": l.Path}).Info("starting webui server")

	if !l.Attach {
		return util.Start(spec)
	}

	spec.StdoutLine = func(line string) { log.WithField("stream", "stdout").Info(line) }
	spec.StderrLine = func(line string) { log.WithField("stream", "stderr").Info(line) }
	res, err := util.Run(ctx, spec)
	if err != nil {
		return res.Code, fmt.Errorf("webui exited: %w", err)
	}
	return 0, nil
}

// WaitReady polls the server until it answers or the timeout passes.
func WaitReady(ctx context.Context, api sdapi.API, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultStartupTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	t := time.NewTicker(readyPollInterval)
	defer t.Stop()
	for {
		if err := api.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server did not come up within %s", timeout)
		case <-t.C:
		}
	}
}
