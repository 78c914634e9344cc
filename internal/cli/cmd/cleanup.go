package cmd

import (
	"github.com/spf13/cobra"

	"artassist/internal/cli"
	"artassist/internal/model"
)

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cleanup <image>",
		Short:         "Refine a rough sketch with img2img",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, model.TaskCleanup, args[0])
		},
	}
	cli.BindBatchFlags(cmd.Flags(), true)
	return cmd
}
