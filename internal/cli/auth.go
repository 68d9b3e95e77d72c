package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/spf13/cobra"
)

// readSecret returns flagVal, else $envVar, else one line from in.
func readSecret(in io.Reader, out io.Writer, prompt, flagVal, envVar string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	_, _ = fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ", password, "TASKBOARD_PASSWORD")
			if err != nil {
				return err
			}
			return withWorkspace(cmd, func(ws *workspace.Handle) error {
				_, err := ws.Login(cmd.Context(), email, pw)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (env: TASKBOARD_PASSWORD; prompted when unset)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session and cached projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ws *workspace.Handle) error {
				if err := ws.Logout(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				u, _ := ws.State().CurrentUser()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>", u.Name, u.Email)
				if u.Role != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (%s)", u.Role)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var name, email, password, confirm string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			pw, err := readSecret(in, cmd.ErrOrStderr(), "Password: ", password, "TASKBOARD_PASSWORD")
			if err != nil {
				return err
			}
			if confirm == "" && password != "" {
				confirm = password
			}
			again, err := readSecret(in, cmd.ErrOrStderr(), "Confirm password: ", confirm, "TASKBOARD_PASSWORD")
			if err != nil {
				return err
			}
			return withWorkspace(cmd, func(ws *workspace.Handle) error {
				return ws.Register(cmd.Context(), name, email, pw, again)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (env: TASKBOARD_PASSWORD; prompted when unset)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation (defaults to --password)")
	return cmd
}
