package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "List and manage projects",
	}
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())
	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectDeleteCmd())
	cmd.AddCommand(newProjectStatsCmd())
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var (
		filter state.ProjectFilter
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				projects := ws.State().FilterProjects(filter)
				if asJSON {
					return printJSON(cmd.OutOrStdout(), projects)
				}
				writeProjects(cmd.OutOrStdout(), projects)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "Match name or description")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Project status (PLANNING, ACTIVE, ON_HOLD, COMPLETED, CANCELLED)")
	cmd.Flags().StringVar(&filter.Priority, "priority", "", "Priority (LOW, MEDIUM, HIGH)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func writeProjects(out io.Writer, projects []models.Project) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPRIORITY\tTASKS\tMEMBERS")
	for _, p := range projects {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", p.ID, p.Name, p.Status, p.Priority, len(p.Tasks), len(p.Members))
	}
	_ = tw.Flush()
}

func newProjectShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project with its tasks and members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				p, err := ws.OpenProject(cmd.Context(), models.ID(args[0]))
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), p)
				}
				writeProject(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func writeProject(out io.Writer, p models.Project) {
	_, _ = fmt.Fprintf(out, "%s  %s\n", p.ID, p.Name)
	if p.Description != "" {
		_, _ = fmt.Fprintf(out, "  %s\n", p.Description)
	}
	_, _ = fmt.Fprintf(out, "  status %s, priority %s, progress %d%%\n", p.Status, p.Priority, p.Progress)
	if len(p.Members) > 0 {
		names := make([]string, 0, len(p.Members))
		for _, m := range p.Members {
			names = append(names, fmt.Sprintf("%s (%s)", displayUser(&m.User), m.Role))
		}
		_, _ = fmt.Fprintf(out, "  members: %s\n", strings.Join(names, ", "))
	}
	if len(p.Tasks) == 0 {
		_, _ = fmt.Fprintln(out, "  no tasks")
		return
	}
	_, _ = fmt.Fprintln(out)
	writeTasks(out, p.Tasks)
}

func writeTasks(out io.Writer, tasks []models.Task) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tTYPE\tPRIORITY\tASSIGNEE\tDUE")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Type, t.Priority, displayUser(t.Assignee), t.DueDate)
	}
	_ = tw.Flush()
}

func displayUser(u *models.User) string {
	switch {
	case u == nil:
		return "-"
	case u.Name != "":
		return u.Name
	default:
		return u.ID.String()
	}
}

func newProjectCreateCmd() *cobra.Command {
	var in client.ProjectInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				p, err := ws.CreateProject(cmd.Context(), in)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.Status, "status", "", "Status (default PLANNING)")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "Priority")
	cmd.Flags().StringVar(&in.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.EndDate, "end", "", "End date (YYYY-MM-DD)")
	return cmd
}

func newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				return ws.DeleteProject(cmd.Context(), models.ID(args[0]))
			})
		},
	}
}

func newProjectStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats [project-id]",
		Short: "Show task statistics for a project, or dashboard totals",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ws *workspace.Handle) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					d := ws.State().DashboardStats()
					if asJSON {
						return printJSON(out, d)
					}
					_, _ = fmt.Fprintf(out, "projects %d, tasks %d (%d completed), unread notifications %d\n",
						d.Projects, d.Tasks, d.CompletedTasks, d.Notifications)
					return nil
				}
				id := models.ID(args[0])
				if _, err := ws.OpenProject(cmd.Context(), id); err != nil {
					return err
				}
				st, _ := ws.State().ProjectStats(id, time.Now())
				if asJSON {
					return printJSON(out, st)
				}
				_, _ = fmt.Fprintf(out, "tasks %d: %d todo, %d in progress, %d completed, %d overdue\n",
					st.Total, st.Todo, st.InProgress, st.Completed, st.Overdue)
				_, _ = fmt.Fprintf(out, "completion %d%%, team size %d\n", st.CompletionRate, st.TeamSize)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
