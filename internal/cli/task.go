package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
	"github.com/spf13/cobra"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(newTaskMineCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskStatusCmd())
	cmd.AddCommand(newTaskDeleteCmd())
	cmd.AddCommand(newTaskCommentCmd())
	cmd.AddCommand(newTaskAttachCmd())
	cmd.AddCommand(newTaskDetachCmd())
	cmd.AddCommand(newTaskShareCmd())
	return cmd
}

func newTaskMineCmd() *cobra.Command {
	var (
		overdue bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List tasks assigned to you across all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				u, _ := ws.State().CurrentUser()
				var list []state.ProjectTask
				if overdue {
					for _, pt := range ws.State().OverdueTasks(time.Now()) {
						if pt.Task.AssigneeID() == u.ID {
							list = append(list, pt)
						}
					}
				} else {
					list = ws.State().TasksAssignedTo(u.ID)
				}
				if asJSON {
					if list == nil {
						list = []state.ProjectTask{}
					}
					return printJSON(cmd.OutOrStdout(), list)
				}
				if len(list) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tasks assigned to you")
					return nil
				}
				for _, pt := range list {
					t := pt.Task
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %s  [%s]\n", t.ID, t.Status, t.Title, pt.ProjectName)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&overdue, "overdue", false, "Only tasks past their due date")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var (
		projectID string
		assignee  string
		in        client.TaskInput
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if assignee != "" {
				id := models.ID(assignee)
				in.Assignee = &id
			}
			return withSession(cmd, func(ws *workspace.Handle) error {
				t, err := ws.CreateTask(cmd.Context(), models.ID(projectID), in)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().StringVar(&in.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.Type, "type", "", "Type (TASK, BUG, FEATURE, IMPROVEMENT, OTHER)")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "Priority (LOW, MEDIUM, HIGH)")
	cmd.Flags().StringVar(&in.Status, "status", "", "Initial status (default TODO)")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func validTaskStatus(s string) bool {
	for _, v := range models.TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func newTaskStatusCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Move a task to TODO, IN_PROGRESS or COMPLETED",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := strings.ToUpper(args[1])
			if !validTaskStatus(status) {
				return fmt.Errorf("status must be one of %s", strings.Join(models.TaskStatuses, ", "))
			}
			return withSession(cmd, func(ws *workspace.Handle) error {
				_, err := ws.UpdateTaskStatus(cmd.Context(), models.ID(projectID), models.ID(args[0]), status)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskDeleteCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				return ws.DeleteTask(cmd.Context(), models.ID(projectID), models.ID(args[0]))
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskCommentCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "comment <task-id> <text>",
		Short: "Comment on a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				_, err := ws.AddComment(cmd.Context(), models.ID(projectID), models.ID(args[0]), strings.Join(args[1:], " "))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskAttachCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "attach <task-id> <file>",
		Short: "Upload a file (up to 5MB) to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			return withSession(cmd, func(ws *workspace.Handle) error {
				_, err := ws.AddAttachment(cmd.Context(), models.ID(projectID), models.ID(args[0]), filepath.Base(args[1]), f)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskShowCmd() *cobra.Command {
	var (
		projectID string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its comments and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				ctx := cmd.Context()
				t, err := ws.OpenTask(ctx, models.ID(projectID), models.ID(args[0]))
				if err != nil {
					return err
				}
				if cs, err := ws.LoadComments(ctx, t.ID); err == nil {
					t.Comments = cs
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, t)
				}
				_, _ = fmt.Fprintf(out, "%s  %s\n", t.ID, t.Title)
				if t.Description != "" {
					_, _ = fmt.Fprintf(out, "  %s\n", t.Description)
				}
				_, _ = fmt.Fprintf(out, "  %s, %s, %s priority, assignee %s", t.Status, t.Type, t.Priority, displayUser(t.Assignee))
				if t.DueDate != "" {
					_, _ = fmt.Fprintf(out, ", due %s", t.DueDate)
				}
				_, _ = fmt.Fprintln(out)
				for _, a := range t.Attachments {
					_, _ = fmt.Fprintf(out, "  attachment %s  %s (%d bytes)\n", a.ID, a.Name, a.Size)
				}
				for _, c := range t.Comments {
					_, _ = fmt.Fprintf(out, "  %s: %s\n", displayUser(&c.User), c.Content)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskDetachCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "detach <task-id> <attachment-id>",
		Short: "Delete an attachment from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				return ws.RemoveAttachment(cmd.Context(), models.ID(projectID), models.ID(args[0]), models.ID(args[1]))
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskShareCmd() *cobra.Command {
	var (
		users      []string
		permission string
		message    string
	)
	cmd := &cobra.Command{
		Use:   "share <task-id>",
		Short: "Email a task to other users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]models.ID, 0, len(users))
			for _, u := range users {
				ids = append(ids, models.ID(u))
			}
			return withSession(cmd, func(ws *workspace.Handle) error {
				_, err := ws.ShareTask(cmd.Context(), models.ID(args[0]), ids, permission, message)
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&users, "user", nil, "User ID to share with (repeatable)")
	cmd.Flags().StringVar(&permission, "permission", "view", "Permission level (view, edit)")
	cmd.Flags().StringVar(&message, "message", "", "Message included in the email")
	return cmd
}
