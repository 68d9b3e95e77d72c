package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// TaskInput is the body of POST /projects/{id}/tasks. A nil Assignee is sent as null.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Type        string     `json:"type,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Assignee    *models.ID `json:"assignee"`
	DueDate     string     `json:"due_date,omitempty"`
}

// ShareRequest is the body of POST /tasks/{id}/share.
type ShareRequest struct {
	UserIDs    []models.ID `json:"userIds"`
	Permission string      `json:"permission,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// ShareResult reports who a task was shared with.
type ShareResult struct {
	SharedWith []models.User `json:"sharedWith"`
}

func taskPath(id models.ID) string {
	return "/tasks/" + url.PathEscape(id.String())
}

// ListTasks returns the tasks visible to the signed-in user.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	err := c.doJSON(ctx, http.MethodGet, "/tasks", nil, &out)
	return out, err
}

// GetTask returns one task. Its Project field holds the owning project id.
func (c *Client) GetTask(ctx context.Context, id models.ID) (*models.Task, error) {
	var out models.Task
	err := c.doJSON(ctx, http.MethodGet, taskPath(id), nil, &out)
	return &out, err
}

// CreateTask creates a task in a project.
func (c *Client) CreateTask(ctx context.Context, projectID models.ID, in TaskInput) (*models.Task, error) {
	var out models.Task
	err := c.doJSON(ctx, http.MethodPost, projectPath(projectID)+"/tasks", in, &out)
	return &out, err
}

// UpdateTask sends the set fields of patch and returns the server's task.
// The assignee goes over the wire as a user id.
func (c *Client) UpdateTask(ctx context.Context, id models.ID, patch models.TaskPatch) (*models.Task, error) {
	b, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, err
	}
	if patch.Assignee != nil && !patch.ClearAssignee {
		body["assignee"] = patch.Assignee.ID
	}
	var out models.Task
	err = c.doJSON(ctx, http.MethodPut, taskPath(id), body, &out)
	return &out, err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// ShareTask emails a task to other users.
func (c *Client) ShareTask(ctx context.Context, id models.ID, r ShareRequest) (*ShareResult, error) {
	var out ShareResult
	err := c.doJSON(ctx, http.MethodPost, taskPath(id)+"/share", r, &out)
	return &out, err
}

// AddAttachment uploads a file to a task and returns the updated task; the new
// attachment is the last entry of its Attachments.
func (c *Client) AddAttachment(ctx context.Context, taskID models.ID, filename string, r io.Reader) (*models.Task, error) {
	var out models.Task
	err := c.upload(ctx, taskPath(taskID)+"/attachments", "file", filename, r, models.MaxAttachmentBytes, &out)
	return &out, err
}

// RemoveAttachment deletes an attachment and returns the updated task.
func (c *Client) RemoveAttachment(ctx context.Context, taskID, attachmentID models.ID) (*models.Task, error) {
	var out models.Task
	err := c.doJSON(ctx, http.MethodDelete, taskPath(taskID)+"/attachments/"+url.PathEscape(attachmentID.String()), nil, &out)
	return &out, err
}

// ListComments returns a task's comments.
func (c *Client) ListComments(ctx context.Context, taskID models.ID) ([]models.Comment, error) {
	var out []models.Comment
	err := c.doJSON(ctx, http.MethodGet, taskPath(taskID)+"/comments", nil, &out)
	return out, err
}

// CreateComment adds a comment to a task.
func (c *Client) CreateComment(ctx context.Context, taskID models.ID, content string) (*models.Comment, error) {
	var out models.Comment
	err := c.doJSON(ctx, http.MethodPost, taskPath(taskID)+"/comments", map[string]string{"content": content}, &out)
	return &out, err
}

// UpdateComment edits a comment.
func (c *Client) UpdateComment(ctx context.Context, id models.ID, content string) (*models.Comment, error) {
	var out models.Comment
	err := c.doJSON(ctx, http.MethodPut, "/comments/"+url.PathEscape(id.String()), map[string]string{"content": content}, &out)
	return &out, err
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodDelete, "/comments/"+url.PathEscape(id.String()), nil, nil)
}
