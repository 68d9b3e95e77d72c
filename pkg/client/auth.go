package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /auth/profile.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Register creates an account. The backend does not sign the user in.
func (c *Client) Register(ctx context.Context, r RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register", r, nil)
}

// Login exchanges credentials for a token and the user document. Both the
// {"token","user"} shape and a flat user document carrying "token" are accepted.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &raw); err != nil {
		return nil, err
	}
	var out models.AuthResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if out.User.ID.IsZero() {
		if err := json.Unmarshal(raw, &out.User); err != nil {
			return nil, fmt.Errorf("decode login user: %w", err)
		}
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	return &out, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &out)
	return &out, err
}

// UpdateProfile changes the signed-in user's name or email.
func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (*models.User, error) {
	var out models.User
	err := c.doJSON(ctx, http.MethodPut, "/auth/profile", u, &out)
	return &out, err
}

// ChangePassword replaces the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.doJSON(ctx, http.MethodPut, "/auth/change-password", body, nil)
}

// UploadProfileImage uploads an avatar of at most models.MaxAvatarBytes and
// returns the updated user.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, r io.Reader) (*models.User, error) {
	var out models.User
	err := c.upload(ctx, "/auth/upload-image", "image", filename, r, models.MaxAvatarBytes, &out)
	return &out, err
}

// upload posts a single file as multipart/form-data under field. Files over
// limit bytes are rejected with ErrTooLarge before any bytes are sent.
func (c *Client) upload(ctx context.Context, path, field, filename string, r io.Reader, limit int64, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filepath.Base(filename))
	if err != nil {
		return err
	}
	n, err := io.Copy(fw, io.LimitReader(r, limit+1))
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if n > limit {
		return ErrTooLarge
	}
	if err := mw.Close(); err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	return c.send(req, path, out)
}
