// Package cli implements the taskboard command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/GITHIYON49/taskmanagementapp/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	var (
		homeOverride string
		envFile      string
		apiURL       string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:          "taskboard",
		Short:        "taskboard: projects, tasks and notifications from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			home, err := config.ResolveHome(homeOverride)
			if err != nil {
				return err
			}
			cfg, err := config.Load(home)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(withEnv(cmd.Context(), &env{home: home, cfg: cfg, log: log}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&homeOverride, "home", "", "Override taskboard home directory (default: ~/.taskboard, env: TASKBOARD_HOME)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load env vars from file (KEY=VALUE per line) before running")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API root (env: TASKBOARD_API_URL)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd())

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newProfileCmd())

	cmd.AddCommand(newProjectCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newMemberCmd())
	cmd.AddCommand(newUserCmd())
	cmd.AddCommand(newNotificationCmd())
	cmd.AddCommand(newApikeyCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}
	return cmd
}
