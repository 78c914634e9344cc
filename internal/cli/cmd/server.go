package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"artassist/internal/launcher"
	"artassist/internal/logging"
)

func newServerCmd() *cobra.Command {
	server := &cobra.Command{
		Use:           "server",
		Short:         "Manage the WebUI server process",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	server.AddCommand(newServerStartCmd())
	server.AddCommand(newServerStatusCmd())
	return server
}

func newServerStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "start",
		Short:         "Launch the configured WebUI install with the API enabled",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			logging.Setup(settings.Verbose, os.Stderr)
			attach, _ := cmd.Flags().GetBool("attach")

			port, err := serverPort(settings.Server.URL)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}

			l := &launcher.Launcher{
				Path:     settings.Server.WebUIPath,
				Port:     port,
				BootArgs: settings.Server.BootArgs,
				Attach:   attach,
			}
			pid, err := l.Start(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if attach {
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Started (pid %d), waiting for the API...\n", pid)
			client := newAPIClient(settings)
			if err := launcher.WaitReady(cmd.Context(), client, settings.Server.StartupTimeout); err != nil {
				return &ExitError{Code: ExitServerError, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Server is up at %s", settings.Server.URL))
			return nil
		},
	}
	cmd.Flags().Bool("attach", false, "Stay attached and stream server output into the log")
	return cmd
}

func newServerStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Report server reachability and in-flight job progress",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			client := newAPIClient(settings)

			if err := client.Ping(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), color.RedString("Unreachable: %s", settings.Server.URL))
				return &ExitError{Code: ExitServerError, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Reachable: %s", settings.Server.URL))

			resp, err := client.Progress(cmd.Context())
			if err == nil && resp.State.JobCount > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "In-flight job: stage %d/%d, %.0f%%\n",
					resp.State.JobNo+1, resp.State.JobCount, resp.Progress*100)
			}
			return nil
		},
	}
}

// serverPort extracts the port from the configured base URL, defaulting per
// scheme when none is explicit.
func serverPort(base string) (int, error) {
	u, err := url.Parse(base)
	if err != nil {
		return 0, fmt.Errorf("parse server url: %w", err)
	}
	if p := u.Port(); p != "" {
		return strconv.Atoi(p)
	}
	if u.Scheme == "https" {
		return 443, nil
	}
	return 80, nil
}
