// Package cmd wires the artassist command tree.
package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"artassist/internal/config"
	"artassist/internal/pipeline"
	"artassist/internal/sdapi"
)

const (
	ExitOK              = 0
	ExitCLIError        = 1
	ExitServerError     = 2
	ExitGenerationError = 3
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "artassist",
		Short:         "Control panel for a Stable Diffusion WebUI server",
		Long:          "Artassist drives an AUTOMATIC1111-compatible Stable Diffusion WebUI over its HTTP API. It cleans up rough sketches (img2img refinement) and fixes faces (detection-based inpainting), with live progress tracking and cancellation across multi-image batches.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all subcommands; bound to viper keys so
	// config file and ARTASSIST_* env vars feed the same settings.
	root.PersistentFlags().String("server", "", "Server base URL (default http://127.0.0.1:7860)")
	root.PersistentFlags().String("model", "", "Checkpoint keyword to resolve before a batch")
	root.PersistentFlags().StringP("out-dir", "o", "", "Output directory for generated images")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(newCleanupCmd())
	root.AddCommand(newFaceFixCmd())
	root.AddCommand(newPanelCmd())
	root.AddCommand(newModelsCmd())
	root.AddCommand(newServerCmd())
	root.AddCommand(newStopCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	if err := config.Init(root); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return root.ExecuteContext(ctx)
}

// exitFor maps the error taxonomy onto process exit codes.
func exitFor(err error) *ExitError {
	var se *sdapi.StatusError
	var nf *sdapi.ModelNotFoundError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pipeline.ErrServerUnavailable):
		return &ExitError{Code: ExitServerError, Err: err}
	case errors.Is(err, pipeline.ErrBusy):
		return &ExitError{Code: ExitCLIError, Err: err}
	case errors.Is(err, sdapi.ErrDetailerMissing), errors.As(err, &se), errors.As(err, &nf):
		return &ExitError{Code: ExitGenerationError, Err: err}
	default:
		return &ExitError{Code: ExitGenerationError, Err: err}
	}
}

func loadSettings() (*config.Settings, error) {
	s, err := config.Load()
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}
	return s, nil
}

func newAPIClient(s *config.Settings) *sdapi.Client {
	return sdapi.NewClient(s.Server.URL, sdapi.WithGenerateTimeout(s.Server.APITimeout))
}
