package cli

import (
	"strings"

	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
	"github.com/spf13/cobra"
)

func newMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage project members",
	}
	cmd.AddCommand(newMemberAddCmd())
	cmd.AddCommand(newMemberRemoveCmd())
	return cmd
}

func newMemberAddCmd() *cobra.Command {
	var projectID, role string
	cmd := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Add a user to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				return ws.AddMember(cmd.Context(), models.ID(projectID), models.ID(args[0]), strings.ToUpper(role))
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().StringVar(&role, "role", models.RoleMember, "Role (MEMBER or ADMIN)")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newMemberRemoveCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "remove <user-id>",
		Short: "Remove a user from a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				return ws.RemoveMember(cmd.Context(), models.ID(projectID), models.ID(args[0]))
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
