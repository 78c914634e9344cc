package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"artassist/internal/imageio"
	"artassist/internal/logging"
	"artassist/internal/pipeline"
	"artassist/internal/poll"
	"artassist/internal/progress"
	"artassist/internal/prompt"
	"artassist/internal/ui"
)

func newPanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "panel [image]",
		Short:         "Full-screen control panel with live progress",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return &ExitError{
					Code: ExitCLIError,
					Err:  errors.New("the panel needs a terminal; use 'artassist cleanup' or 'artassist facefix' for headless runs"),
				}
			}
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			// The panel owns the terminal, so log lines go only to the ring.
			ring := logging.Setup(settings.Verbose, io.Discard)

			client := newAPIClient(settings)
			state := progress.NewBatchState(settings.Progress.NoiseThreshold)
			store := imageio.NewStore(settings.Output.Dir)

			var translator prompt.Translator
			if settings.Prompt.Translate {
				translator = prompt.NewGoogleTranslator(settings.Prompt.HintLanguage)
			}
			svc := pipeline.NewService(
				pipeline.WithAPI(client),
				pipeline.WithBatchState(state),
				pipeline.WithPromptBuilder(prompt.NewBuilder(translator)),
				pipeline.WithStore(store),
				pipeline.WithGeneration(settings.Generation),
				pipeline.WithModelKeyword(settings.Model.Keyword),
			)

			image := ""
			if len(args) == 1 {
				image = args[0]
			}
			hint, _ := cmd.Flags().GetString("hint")

			if err := ui.Run(cmd.Context(), ui.Deps{
				Settings: settings,
				Client:   client,
				Service:  svc,
				Poller:   poll.New(client, state, settings.Progress.FirstPollGuard),
				Store:    store,
				Ring:     ring,
				Image:    image,
				Hint:     hint,
			}); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return nil
		},
	}
	cmd.Flags().String("hint", "", "Free-text hint describing the drawing")
	return cmd
}
