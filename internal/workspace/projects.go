package workspace

import (
	"context"
	"strings"

	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// RefreshProjects reloads every project from the server.
func (w *Workspace) RefreshProjects(ctx context.Context) error {
	w.st.SetLoading(true)
	projects, err := w.api.ListProjects(ctx)
	if err != nil {
		err = w.fail(ctx, "refresh_projects", err, "Failed to load projects")
		w.st.SetError(Message(err))
		return err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	w.st.SetProjects(projects)
	w.persist(ctx)
	return nil
}

// OpenProject returns a project, fetching it when it is not held locally.
func (w *Workspace) OpenProject(ctx context.Context, id models.ID) (models.Project, error) {
	if p, ok := w.st.Project(id); ok {
		return p, nil
	}
	p, err := w.api.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, w.fail(ctx, "open_project", err, "Failed to load project")
	}
	w.st.UpsertProject(*p)
	return *p, nil
}

// CreateProject inserts the project optimistically and reconciles it with the
// server's copy.
func (w *Workspace) CreateProject(ctx context.Context, in client.ProjectInput) (models.Project, error) {
	const op = "create_project"
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Project{}, w.fail(ctx, op, invalid(op, "Project name is required"), "")
	}
	draft := models.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Tasks:       []models.Task{},
		Members:     []models.Member{},
	}
	if draft.Status == "" {
		draft.Status = models.ProjectPlanning
	}
	if u, ok := w.st.CurrentUser(); ok {
		draft.CreatedBy = &u
	}
	tmp := state.NewTempID()
	w.st.BeginProjectInsert(tmp, draft)
	p, err := w.api.CreateProject(ctx, in)
	if err != nil {
		w.st.RollbackProjectInsert(tmp)
		return models.Project{}, w.fail(ctx, op, err, "Failed to create project")
	}
	w.st.CommitProjectInsert(tmp, *p)
	w.persist(ctx)
	w.success(op, "Project created successfully!")
	return *p, nil
}

// UpdateProject saves project settings and replaces the local copy.
func (w *Workspace) UpdateProject(ctx context.Context, id models.ID, in client.ProjectInput) (models.Project, error) {
	const op = "update_project"
	if in.Progress != nil && (*in.Progress < 0 || *in.Progress > 100) {
		return models.Project{}, w.fail(ctx, op, invalid(op, "Progress must be between 0 and 100"), "")
	}
	p, err := w.api.UpdateProject(ctx, id, in)
	if err != nil {
		return models.Project{}, w.fail(ctx, op, err, "Failed to update project")
	}
	w.st.UpdateProject(*p)
	w.persist(ctx)
	w.success(op, "Project updated successfully!")
	return *p, nil
}

// DeleteProject deletes the project on the server, then locally.
func (w *Workspace) DeleteProject(ctx context.Context, id models.ID) error {
	const op = "delete_project"
	if err := w.api.DeleteProject(ctx, id); err != nil {
		return w.fail(ctx, op, err, "Failed to delete project")
	}
	w.st.DeleteProject(id)
	w.persist(ctx)
	w.success(op, "Project deleted successfully!")
	return nil
}

// AddMember adds userID to the project optimistically.
func (w *Workspace) AddMember(ctx context.Context, projectID, userID models.ID, role string) error {
	const op = "add_member"
	if userID.IsZero() {
		return w.fail(ctx, op, invalid(op, "Please select a user"), "")
	}
	if role == "" {
		role = models.RoleMember
	}
	tmp := state.NewTempID()
	w.st.BeginMemberInsert(projectID, tmp, models.Member{User: models.User{ID: userID}, Role: role})
	p, err := w.api.AddMember(ctx, projectID, userID, role)
	if err != nil {
		w.st.RollbackMemberInsert(tmp)
		return w.fail(ctx, op, err, "Failed to add member")
	}
	if m, ok := lastMember(p.Members, userID); ok {
		w.st.CommitMemberInsert(tmp, m)
	} else {
		w.st.RollbackMemberInsert(tmp)
		w.st.UpdateProject(*p)
	}
	w.persist(ctx)
	w.success(op, "Member added to project successfully!")
	return nil
}

// RemoveMember removes every membership of userID from the project.
func (w *Workspace) RemoveMember(ctx context.Context, projectID, userID models.ID) error {
	const op = "remove_member"
	if _, err := w.api.RemoveMember(ctx, projectID, userID); err != nil {
		return w.fail(ctx, op, err, "Failed to remove member")
	}
	w.st.RemoveProjectMember(projectID, userID)
	w.persist(ctx)
	w.success(op, "Member removed successfully!")
	return nil
}

func lastMember(ms []models.Member, userID models.ID) (models.Member, bool) {
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i].User.ID == userID {
			return ms[i], true
		}
	}
	return models.Member{}, false
}
