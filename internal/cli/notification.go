package cli

import (
	"fmt"

	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
	"github.com/spf13/cobra"
)

func newNotificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notification",
		Aliases: []string{"notifications", "inbox"},
		Short:   "Read notifications",
	}
	cmd.AddCommand(newNotificationListCmd())
	cmd.AddCommand(newNotificationReadCmd())
	cmd.AddCommand(newNotificationReadAllCmd())
	return cmd
}

func newNotificationListCmd() *cobra.Command {
	var (
		unreadOnly bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				if err := ws.RefreshNotifications(cmd.Context()); err != nil {
					return err
				}
				var list []models.Notification
				for _, n := range ws.State().Notifications() {
					if !unreadOnly || !n.Read {
						list = append(list, n)
					}
				}
				out := cmd.OutOrStdout()
				if asJSON {
					if list == nil {
						list = []models.Notification{}
					}
					return printJSON(out, list)
				}
				_, _ = fmt.Fprintf(out, "%d unread\n", ws.State().UnreadCount())
				for _, n := range list {
					mark := " "
					if !n.Read {
						mark = "*"
					}
					_, _ = fmt.Fprintf(out, "%s %s  %s: %s\n", mark, n.ID, n.Title, n.Message)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newNotificationReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				if err := ws.RefreshNotifications(cmd.Context()); err != nil {
					return err
				}
				if err := ws.MarkNotificationRead(cmd.Context(), models.ID(args[0])); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d unread\n", ws.State().UnreadCount())
				return nil
			})
		},
	}
}

func newNotificationReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				return ws.MarkAllNotificationsRead(cmd.Context())
			})
		},
	}
}
