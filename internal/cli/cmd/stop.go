package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "stop",
		Short:         "Ask the server to abort the current generation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if err := newAPIClient(settings).Interrupt(cmd.Context()); err != nil {
				return &ExitError{Code: ExitServerError, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Interrupt sent.")
			return nil
		},
	}
}
