package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// ProjectInput is the body of project create and update calls.
type ProjectInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Progress    *int   `json:"progress,omitempty"`
}

func projectPath(id models.ID) string {
	return "/projects/" + url.PathEscape(id.String())
}

// ListProjects returns every project visible to the signed-in user, with tasks and members.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := c.doJSON(ctx, http.MethodGet, "/projects", nil, &out)
	return out, err
}

// GetProject returns one project.
func (c *Client) GetProject(ctx context.Context, id models.ID) (*models.Project, error) {
	var out models.Project
	err := c.doJSON(ctx, http.MethodGet, projectPath(id), nil, &out)
	return &out, err
}

// CreateProject creates a project and returns the server's copy.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	var out models.Project
	err := c.doJSON(ctx, http.MethodPost, "/projects", in, &out)
	return &out, err
}

// UpdateProject updates a project and returns the server's copy.
func (c *Client) UpdateProject(ctx context.Context, id models.ID, in ProjectInput) (*models.Project, error) {
	var out models.Project
	err := c.doJSON(ctx, http.MethodPut, projectPath(id), in, &out)
	return &out, err
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodDelete, projectPath(id), nil, nil)
}

// AddMember adds userID to the project with role and returns the updated project.
func (c *Client) AddMember(ctx context.Context, projectID, userID models.ID, role string) (*models.Project, error) {
	body := map[string]string{"userId": userID.String(), "role": role}
	var out models.Project
	err := c.doJSON(ctx, http.MethodPost, projectPath(projectID)+"/members", body, &out)
	return &out, err
}

// RemoveMember removes userID from the project and returns the updated project.
func (c *Client) RemoveMember(ctx context.Context, projectID, userID models.ID) (*models.Project, error) {
	var out models.Project
	err := c.doJSON(ctx, http.MethodDelete, projectPath(projectID)+"/members/"+url.PathEscape(userID.String()), nil, &out)
	return &out, err
}
