package cmd

import (
	"github.com/spf13/cobra"

	"artassist/internal/cli"
	"artassist/internal/model"
)

func newFaceFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "facefix <image>",
		Short:         "Regenerate only the detected face of an image",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, model.TaskFaceFix, args[0])
		},
	}
	cli.BindBatchFlags(cmd.Flags(), false)
	return cmd
}
