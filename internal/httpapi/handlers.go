package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

func (a *App) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /state", a.getState)
	mux.HandleFunc("GET /stats", a.getDashboard)
	mux.HandleFunc("POST /refresh", a.refresh)

	mux.HandleFunc("GET /projects", a.listProjects)
	mux.HandleFunc("POST /projects", a.createProject)
	mux.HandleFunc("GET /projects/{id}", a.getProject)
	mux.HandleFunc("PATCH /projects/{id}", a.updateProject)
	mux.HandleFunc("DELETE /projects/{id}", a.deleteProject)
	mux.HandleFunc("GET /projects/{id}/stats", a.projectStats)
	mux.HandleFunc("POST /projects/{id}/members", a.addMember)
	mux.HandleFunc("DELETE /projects/{id}/members/{userID}", a.removeMember)

	mux.HandleFunc("POST /projects/{id}/tasks", a.createTask)
	mux.HandleFunc("GET /projects/{id}/tasks/{taskID}", a.getTask)
	mux.HandleFunc("PATCH /projects/{id}/tasks/{taskID}", a.updateTask)
	mux.HandleFunc("DELETE /projects/{id}/tasks/{taskID}", a.deleteTask)
	mux.HandleFunc("POST /projects/{id}/tasks/{taskID}/comments", a.addComment)
	mux.HandleFunc("DELETE /projects/{id}/tasks/{taskID}/attachments/{attachmentID}", a.removeAttachment)

	mux.HandleFunc("GET /me/tasks", a.myTasks)
	mux.HandleFunc("GET /tasks/overdue", a.overdueTasks)

	mux.HandleFunc("GET /notifications", a.listNotifications)
	mux.HandleFunc("POST /notifications/read-all", a.markAllRead)
	mux.HandleFunc("POST /notifications/{id}/read", a.markRead)
}

func pathID(r *http.Request, name string) models.ID {
	return models.ID(r.PathValue(name))
}

func (a *App) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.Workspace.State().Snapshot())
}

func (a *App) getDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.Workspace.State().DashboardStats())
}

func (a *App) refresh(w http.ResponseWriter, r *http.Request) {
	if err := a.Workspace.RefreshProjects(r.Context()); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	if err := a.Workspace.RefreshNotifications(r.Context()); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (a *App) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, a.Workspace.State().FilterProjects(state.ProjectFilter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	}))
}

func (a *App) createProject(w http.ResponseWriter, r *http.Request) {
	var in client.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := a.Workspace.CreateProject(r.Context(), in)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

func (a *App) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.Workspace.OpenProject(r.Context(), pathID(r, "id"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, p)
}

func (a *App) updateProject(w http.ResponseWriter, r *http.Request) {
	var in client.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := a.Workspace.UpdateProject(r.Context(), pathID(r, "id"), in)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, p)
}

func (a *App) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := a.Workspace.DeleteProject(r.Context(), pathID(r, "id")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (a *App) projectStats(w http.ResponseWriter, r *http.Request) {
	st, ok := a.Workspace.State().ProjectStats(pathID(r, "id"), time.Now())
	if !ok {
		writeJSONError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, st)
}

func (a *App) addMember(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID models.ID `json:"user_id"`
		Role   string    `json:"role"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	id := pathID(r, "id")
	if err := a.Workspace.AddMember(r.Context(), id, body.UserID, body.Role); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	a.writeProject(w, id)
}

func (a *App) removeMember(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if err := a.Workspace.RemoveMember(r.Context(), id, pathID(r, "userID")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	a.writeProject(w, id)
}

func (a *App) writeProject(w http.ResponseWriter, id models.ID) {
	p, ok := a.Workspace.State().Project(id)
	if !ok {
		writeJSON(w, map[string]any{"ok": true})
		return
	}
	writeJSON(w, p)
}

func (a *App) createTask(w http.ResponseWriter, r *http.Request) {
	var in client.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := a.Workspace.CreateTask(r.Context(), pathID(r, "id"), in)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, t)
}

func (a *App) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := a.Workspace.OpenTask(r.Context(), pathID(r, "id"), pathID(r, "taskID"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, t)
}

func (a *App) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	t, err := a.Workspace.UpdateTask(r.Context(), pathID(r, "id"), pathID(r, "taskID"), patch)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, t)
}

func (a *App) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := a.Workspace.DeleteTask(r.Context(), pathID(r, "id"), pathID(r, "taskID")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (a *App) addComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	c, err := a.Workspace.AddComment(r.Context(), pathID(r, "id"), pathID(r, "taskID"), body.Content)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, c)
}

func (a *App) removeAttachment(w http.ResponseWriter, r *http.Request) {
	projectID, taskID := pathID(r, "id"), pathID(r, "taskID")
	if err := a.Workspace.RemoveAttachment(r.Context(), projectID, taskID, pathID(r, "attachmentID")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	t, ok := a.Workspace.State().Task(projectID, taskID)
	if !ok {
		writeJSON(w, map[string]any{"ok": true})
		return
	}
	writeJSON(w, t)
}

func (a *App) myTasks(w http.ResponseWriter, r *http.Request) {
	u, ok := a.Workspace.State().CurrentUser()
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	out := a.Workspace.State().TasksAssignedTo(u.ID)
	if out == nil {
		out = []state.ProjectTask{}
	}
	writeJSON(w, out)
}

func (a *App) overdueTasks(w http.ResponseWriter, r *http.Request) {
	out := a.Workspace.State().OverdueTasks(time.Now())
	if out == nil {
		out = []state.ProjectTask{}
	}
	writeJSON(w, out)
}

func (a *App) listNotifications(w http.ResponseWriter, r *http.Request) {
	st := a.Workspace.State()
	list := st.Notifications()
	if unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread")); unreadOnly {
		kept := list[:0]
		for _, n := range list {
			if !n.Read {
				kept = append(kept, n)
			}
		}
		list = kept
	}
	if list == nil {
		list = []models.Notification{}
	}
	writeJSON(w, map[string]any{"notifications": list, "unread_count": st.UnreadCount()})
}

func (a *App) markRead(w http.ResponseWriter, r *http.Request) {
	if err := a.Workspace.MarkNotificationRead(r.Context(), pathID(r, "id")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"unread_count": a.Workspace.State().UnreadCount()})
}

func (a *App) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := a.Workspace.MarkAllNotificationsRead(r.Context()); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"unread_count": 0})
}

// Forward publishes store changes and workspace notices to SSE subscribers until
// ctx is done.
func (a *App) Forward(ctx context.Context) {
	changes, cancel := a.Workspace.State().Subscribe()
	defer cancel()
	notices := a.Workspace.Notices()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			a.Hub.PublishJSON(map[string]any{
				"type":       "state_change",
				"seq":        c.Seq,
				"op":         c.Op,
				"project_id": c.ProjectID,
				"task_id":    c.TaskID,
				"applied":    c.Applied,
				"at":         c.At.UTC().Format(time.RFC3339Nano),
			})
		case n := <-notices:
			a.Hub.PublishJSON(map[string]any{
				"type":    "notice",
				"level":   n.Level,
				"op":      n.Op,
				"message": n.Message,
				"at":      n.At.UTC().Format(time.RFC3339Nano),
			})
		}
	}
}
