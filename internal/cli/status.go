package cli

import (
	"fmt"

	"github.com/GITHIYON49/taskmanagementapp/internal/daemon"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show bridge and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			out := cmd.OutOrStdout()
			st, err := daemon.Status(cmd.Context(), e.home)
			if err != nil {
				return err
			}
			if st.Running {
				_, _ = fmt.Fprintf(out, "bridge:  running (pid %d, addr %s)\n", st.PID, st.Addr)
			} else {
				_, _ = fmt.Fprintln(out, "bridge:  not running")
			}
			_, _ = fmt.Fprintf(out, "backend: %s\n", e.cfg.BaseURL())

			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = ws.Close() }()
			auth, ok, err := ws.Session().Load(cmd.Context())
			switch {
			case err != nil:
				return err
			case !ok:
				_, _ = fmt.Fprintln(out, "session: not logged in")
			default:
				line := fmt.Sprintf("session: %s <%s>", auth.User.Name, auth.User.Email)
				if exp, ok := auth.ExpiresAt(); ok {
					line += ", token expires " + exp.Local().Format("2006-01-02 15:04")
				}
				_, _ = fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
