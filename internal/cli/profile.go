package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your account",
	}
	cmd.AddCommand(newProfileUpdateCmd())
	cmd.AddCommand(newProfilePasswordCmd())
	cmd.AddCommand(newProfileAvatarCmd())
	return cmd
}

func newProfileUpdateCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your name or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				cur, _ := ws.State().CurrentUser()
				if name == "" {
					name = cur.Name
				}
				if email == "" {
					email = cur.Email
				}
				_, err := ws.UpdateProfile(cmd.Context(), name, email)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name (default: unchanged)")
	cmd.Flags().StringVar(&email, "email", "", "New email (default: unchanged)")
	return cmd
}

func newProfilePasswordCmd() *cobra.Command {
	var current, next string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			cur, err := readSecret(in, cmd.ErrOrStderr(), "Current password: ", current, "TASKBOARD_PASSWORD")
			if err != nil {
				return err
			}
			nw, err := readSecret(in, cmd.ErrOrStderr(), "New password: ", next, "TASKBOARD_NEW_PASSWORD")
			if err != nil {
				return err
			}
			return withSession(cmd, func(ws *workspace.Handle) error {
				return ws.ChangePassword(cmd.Context(), cur, nw)
			})
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "Current password (env: TASKBOARD_PASSWORD; prompted when unset)")
	cmd.Flags().StringVar(&next, "new", "", "New password (env: TASKBOARD_NEW_PASSWORD; prompted when unset)")
	return cmd
}

func newProfileAvatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <image>",
		Short: "Upload a profile image (up to 2MB)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			return withSession(cmd, func(ws *workspace.Handle) error {
				u, err := ws.UploadAvatar(cmd.Context(), filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), u.Image)
				return nil
			})
		},
	}
}
