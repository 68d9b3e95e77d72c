package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// UserUpdate is the body of PUT /users/{id}.
type UserUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func userPath(id models.ID) string {
	return "/users/" + url.PathEscape(id.String())
}

// ListUsers returns the team directory.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.doJSON(ctx, http.MethodGet, "/users", nil, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id models.ID) (*models.User, error) {
	var out models.User
	err := c.doJSON(ctx, http.MethodGet, userPath(id), nil, &out)
	return &out, err
}

func (c *Client) UpdateUser(ctx context.Context, id models.ID, u UserUpdate) (*models.User, error) {
	var out models.User
	err := c.doJSON(ctx, http.MethodPut, userPath(id), u, &out)
	return &out, err
}

func (c *Client) DeleteUser(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodDelete, userPath(id), nil, nil)
}
