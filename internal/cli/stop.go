package cli

import (
	"fmt"

	"github.com/GITHIYON49/taskmanagementapp/internal/daemon"
	"github.com/spf13/cobra"
)

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			stopped, err := daemon.Stop(cmd.Context(), envFrom(cmd).home)
			if err != nil {
				return err
			}
			if !stopped {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "taskboard bridge is not running")
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Stopped")
			return nil
		},
	}
}
