package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"artassist/internal/sdapi"
	"artassist/internal/util"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Check configuration, server reachability, and model resolution",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			ok := color.GreenString("ok")
			failed := 0
			check := func(name string, err error) {
				if err != nil {
					failed++
					fmt.Fprintf(out, "%-16s %s\n", name, color.RedString(err.Error()))
					return
				}
				fmt.Fprintf(out, "%-16s %s\n", name, ok)
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if f := viper.ConfigFileUsed(); f != "" {
				fmt.Fprintf(out, "%-16s %s\n", "config", f)
			} else {
				fmt.Fprintf(out, "%-16s %s\n", "config", "defaults (no file)")
			}

			check("output dir", util.DirWritable(settings.Output.Dir))

			client := newAPIClient(settings)
			pingErr := client.Ping(cmd.Context())
			check("server", pingErr)

			if pingErr == nil {
				check("model", resolveModelCheck(cmd, client, settings.Model.Keyword))
			} else {
				fmt.Fprintf(out, "%-16s %s\n", "model", "skipped (server unreachable)")
			}

			if failed > 0 {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("%d check(s) failed", failed)}
			}
			return nil
		},
	}
}

// resolveModelCheck verifies the keyword matches an installed checkpoint
// without switching anything.
func resolveModelCheck(cmd *cobra.Command, client *sdapi.Client, keyword string) error {
	opts, err := client.Options(cmd.Context())
	if err != nil {
		return err
	}
	if keyword == "" || strings.Contains(opts.SDModelCheckpoint, keyword) {
		return nil
	}
	models, err := client.Models(cmd.Context())
	if err != nil {
		return err
	}
	for _, m := range models {
		if strings.Contains(m.Title, keyword) || strings.Contains(m.ModelName, keyword) {
			return nil
		}
	}
	return &sdapi.ModelNotFoundError{Keyword: keyword}
}
