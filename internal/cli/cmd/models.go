package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"artassist/internal/sdapi"
)

func newModelsCmd() *cobra.Command {
	models := &cobra.Command{
		Use:           "models",
		Short:         "Inspect and switch the server's checkpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	models.AddCommand(newModelsListCmd())
	models.AddCommand(newModelsCurrentCmd())
	models.AddCommand(newModelsUseCmd())
	return models
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List checkpoints installed on the server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			client := newAPIClient(settings)

			opts, err := client.Options(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitServerError, Err: err}
			}
			list, err := client.Models(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitServerError, Err: err}
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No checkpoints installed.")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"", "Title", "Name", "Hash"})
			table.SetBorder(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, m := range list {
				active := ""
				if m.Title == opts.SDModelCheckpoint {
					active = "*"
				}
				table.Append([]string{active, m.Title, m.ModelName, m.Hash})
			}
			table.Render()
			return nil
		},
	}
}

func newModelsCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "current",
		Short:         "Show the active checkpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			opts, err := newAPIClient(settings).Options(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitServerError, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.SDModelCheckpoint)
			return nil
		},
	}
}

func newModelsUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "use <keyword>",
		Short:         "Activate the first checkpoint matching a keyword",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			keyword := strings.TrimSpace(args[0])
			title, err := sdapi.EnsureModel(cmd.Context(), newAPIClient(settings), keyword)
			if err != nil {
				return exitFor(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active: %s\n", title)
			return nil
		},
	}
}
