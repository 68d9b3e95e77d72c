package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// CreateTask inserts the task optimistically at the top of the project and
// reconciles it with the server's copy.
func (w *Workspace) CreateTask(ctx context.Context, projectID models.ID, in client.TaskInput) (models.Task, error) {
	const op = "create_task"
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return models.Task{}, w.fail(ctx, op, invalid(op, "Task title is required"), "")
	}
	if in.Assignee != nil && in.Assignee.IsZero() {
		in.Assignee = nil
	}
	draft := models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Type:        in.Type,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Project:     projectID,
	}
	if draft.Status == "" {
		draft.Status = models.StatusTodo
	}
	if in.Assignee != nil {
		draft.Assignee = &models.User{ID: *in.Assignee}
	}
	tmp := state.NewTempID()
	w.st.BeginTaskInsert(projectID, tmp, draft)
	t, err := w.api.CreateTask(ctx, projectID, in)
	if err != nil {
		w.st.RollbackTaskInsert(tmp)
		return models.Task{}, w.fail(ctx, op, err, "Failed to create task")
	}
	w.st.CommitTaskInsert(tmp, *t)
	w.persist(ctx)
	w.success(op, "Task created successfully!")
	return *t, nil
}

// UpdateTask applies patch locally right away and sends it to the server. On
// success the server's values are merged in; on failure the touched fields are
// restored.
func (w *Workspace) UpdateTask(ctx context.Context, projectID, taskID models.ID, patch models.TaskPatch) (models.Task, error) {
	const op = "update_task"
	if patch.IsEmpty() {
		return models.Task{}, w.fail(ctx, op, invalid(op, "Nothing to update"), "")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Task{}, w.fail(ctx, op, invalid(op, "Task title is required"), "")
	}
	prev, known := w.st.Task(projectID, taskID)
	if known {
		w.st.UpdateTask(projectID, taskID, patch)
	}
	t, err := w.api.UpdateTask(ctx, taskID, patch)
	if err != nil {
		if known {
			w.st.UpdateTask(projectID, taskID, patch.Revert(prev))
		}
		return models.Task{}, w.fail(ctx, op, err, "Failed to update task")
	}
	w.st.UpdateTask(projectID, taskID, models.PatchFrom(*t))
	w.persist(ctx)
	return *t, nil
}

// UpdateTaskStatus moves a task to status.
func (w *Workspace) UpdateTaskStatus(ctx context.Context, projectID, taskID models.ID, status string) (models.Task, error) {
	t, err := w.UpdateTask(ctx, projectID, taskID, models.TaskPatch{Status: &status})
	if err == nil {
		w.success("update_task_status", "Task status updated!")
	}
	return t, err
}

// DeleteTask deletes a task on the server, then locally.
func (w *Workspace) DeleteTask(ctx context.Context, projectID, taskID models.ID) error {
	const op = "delete_task"
	if err := w.api.DeleteTask(ctx, taskID); err != nil {
		return w.fail(ctx, op, err, "Failed to delete task")
	}
	w.st.DeleteTask(projectID, taskID)
	w.persist(ctx)
	w.success(op, "Task deleted successfully!")
	return nil
}

// AddComment posts a comment and appends the server's copy to the task.
func (w *Workspace) AddComment(ctx context.Context, projectID, taskID models.ID, content string) (models.Comment, error) {
	const op = "add_comment"
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, w.fail(ctx, op, invalid(op, "Comment cannot be empty"), "")
	}
	c, err := w.api.CreateComment(ctx, taskID, content)
	if err != nil {
		return models.Comment{}, w.fail(ctx, op, err, "Failed to add comment")
	}
	w.st.AddComment(projectID, taskID, *c)
	w.persist(ctx)
	w.success(op, "Comment added!")
	return *c, nil
}

// AddAttachment uploads a file to a task and records the new attachment.
func (w *Workspace) AddAttachment(ctx context.Context, projectID, taskID models.ID, filename string, r io.Reader) (models.Attachment, error) {
	const op = "add_attachment"
	t, err := w.api.AddAttachment(ctx, taskID, filename, r)
	if err != nil {
		return models.Attachment{}, w.fail(ctx, op, err, "Failed to upload file")
	}
	if len(t.Attachments) == 0 {
		return models.Attachment{}, w.fail(ctx, op, errors.New("upload response carried no attachment"), "Failed to upload file")
	}
	a := t.Attachments[len(t.Attachments)-1]
	w.st.AddAttachment(projectID, taskID, a)
	w.persist(ctx)
	w.success(op, "File uploaded!")
	return a, nil
}

// RemoveAttachment deletes an attachment from a task.
func (w *Workspace) RemoveAttachment(ctx context.Context, projectID, taskID, attachmentID models.ID) error {
	const op = "remove_attachment"
	if _, err := w.api.RemoveAttachment(ctx, taskID, attachmentID); err != nil {
		return w.fail(ctx, op, err, "Failed to delete attachment")
	}
	w.st.RemoveAttachment(projectID, taskID, attachmentID)
	w.persist(ctx)
	w.success(op, "Attachment deleted!")
	return nil
}

// ShareTask emails a task to other users. It returns how many users it reached.
func (w *Workspace) ShareTask(ctx context.Context, taskID models.ID, userIDs []models.ID, permission, message string) (int, error) {
	const op = "share_task"
	if len(userIDs) == 0 {
		return 0, w.fail(ctx, op, invalid(op, "Please select at least one user"), "")
	}
	res, err := w.api.ShareTask(ctx, taskID, client.ShareRequest{UserIDs: userIDs, Permission: permission, Message: message})
	if err != nil {
		return 0, w.fail(ctx, op, err, "Failed to share task")
	}
	n := len(res.SharedWith)
	w.success(op, fmt.Sprintf("Task shared with %d user(s)! Email notifications sent.", n))
	return n, nil
}

// OpenTask returns a task from the store, or fetches it when the project or the
// task is not held locally. A fetched task is not dispatched into the store.
func (w *Workspace) OpenTask(ctx context.Context, projectID, taskID models.ID) (models.Task, error) {
	if t, ok := w.st.Task(projectID, taskID); ok {
		return t, nil
	}
	t, err := w.api.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, w.fail(ctx, "open_task", err, "Task not found")
	}
	return *t, nil
}

// LoadComments fetches a task's comments from the server.
func (w *Workspace) LoadComments(ctx context.Context, taskID models.ID) ([]models.Comment, error) {
	cs, err := w.api.ListComments(ctx, taskID)
	if err != nil {
		return nil, w.fail(ctx, "load_comments", err, "Failed to load comments")
	}
	return cs, nil
}
