package workspace

import (
	"context"
	"errors"
	"io"
	"net/mail"
	"strings"

	"github.com/GITHIYON49/taskmanagementapp/internal/session"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

const minPasswordLen = 6

// Bootstrap restores a stored session: it verifies the token with the backend,
// warms the store from the cached snapshot and then refreshes from the server.
// It returns session.ErrNotAuthenticated when nobody is signed in. When the
// backend cannot be reached the stored session is kept and the store is served
// from the cached snapshot; the transport error is still returned.
func (w *Workspace) Bootstrap(ctx context.Context) (models.User, error) {
	u, err := w.sess.Verify(ctx, w.api)
	if errors.Is(err, session.ErrNotAuthenticated) {
		return models.User{}, err
	}
	if err != nil && (client.IsUnauthorized(err) || u.ID.IsZero()) {
		return models.User{}, w.fail(ctx, "bootstrap", err, "Failed to restore session")
	}
	w.st.SetUser(u)
	w.restoreSnapshot(ctx, u.ID)
	if err != nil {
		return u, w.fail(ctx, "bootstrap", err, "Failed to restore session")
	}
	if err := w.RefreshProjects(ctx); err != nil {
		return u, err
	}
	if err := w.RefreshNotifications(ctx); err != nil {
		w.log.Warn("workspace: initial notification fetch", "error", err)
	}
	return u, nil
}

// Login signs in, persists the session and loads the user's projects.
func (w *Workspace) Login(ctx context.Context, email, password string) (models.User, error) {
	const op = "login"
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, w.fail(ctx, op, invalid(op, "Please fill in all fields"), "")
	}
	auth, err := w.api.Login(ctx, email, password)
	if err != nil {
		return models.User{}, w.fail(ctx, op, err, "Login failed")
	}
	if err := w.sess.Save(ctx, auth.User, auth.Token); err != nil {
		return models.User{}, w.fail(ctx, op, err, "Login failed")
	}
	w.st.Reset()
	w.st.SetUser(auth.User)
	w.success(op, "Welcome back, "+auth.User.Name+"!")
	if err := w.RefreshProjects(ctx); err != nil {
		return auth.User, err
	}
	return auth.User, nil
}

// Register creates an account. The caller still has to Login.
func (w *Workspace) Register(ctx context.Context, name, email, password, confirm string) error {
	const op = "register"
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	switch {
	case name == "" || email == "" || password == "":
		return w.fail(ctx, op, invalid(op, "Please fill in all fields"), "")
	case !validEmail(email):
		return w.fail(ctx, op, invalid(op, "Please enter a valid email address"), "")
	case password != confirm:
		return w.fail(ctx, op, invalid(op, "Passwords don't match"), "")
	case len(password) < minPasswordLen:
		return w.fail(ctx, op, invalid(op, "Password must be at least 6 characters"), "")
	}
	if err := w.api.Register(ctx, client.RegisterRequest{Name: name, Email: email, Password: password}); err != nil {
		return w.fail(ctx, op, err, "Registration failed")
	}
	w.success(op, "Registration successful! Please login.")
	return nil
}

// Logout forgets the session, the cached snapshot and everything in the store.
func (w *Workspace) Logout(ctx context.Context) error {
	var errs []error
	if err := w.sess.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if w.cache != nil {
		if err := w.cache.DeleteSnapshot(ctx, w.origin); err != nil {
			errs = append(errs, err)
		}
	}
	w.st.Reset()
	return errors.Join(errs...)
}

// UpdateProfile changes the signed-in user's name or email.
func (w *Workspace) UpdateProfile(ctx context.Context, name, email string) (models.User, error) {
	const op = "update_profile"
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return models.User{}, w.fail(ctx, op, invalid(op, "Name and email are required"), "")
	}
	u, err := w.api.UpdateProfile(ctx, client.ProfileUpdate{Name: name, Email: email})
	if err != nil {
		return models.User{}, w.fail(ctx, op, err, "Failed to update profile")
	}
	w.st.SetUser(*u)
	if err := w.sess.SaveUser(ctx, *u); err != nil {
		w.log.Warn("workspace: persist profile", "error", err)
	}
	w.success(op, "Profile updated successfully!")
	return *u, nil
}

// ChangePassword replaces the signed-in user's password.
func (w *Workspace) ChangePassword(ctx context.Context, current, next string) error {
	const op = "change_password"
	if current == "" || next == "" {
		return w.fail(ctx, op, invalid(op, "Please fill in all password fields"), "")
	}
	if len(next) < minPasswordLen {
		return w.fail(ctx, op, invalid(op, "Password must be at least 6 characters"), "")
	}
	if err := w.api.ChangePassword(ctx, current, next); err != nil {
		return w.fail(ctx, op, err, "Failed to change password")
	}
	w.success(op, "Password changed successfully!")
	return nil
}

// UploadAvatar replaces the signed-in user's profile image.
func (w *Workspace) UploadAvatar(ctx context.Context, filename string, r io.Reader) (models.User, error) {
	const op = "upload_avatar"
	u, err := w.api.UploadProfileImage(ctx, filename, r)
	if errors.Is(err, client.ErrTooLarge) {
		return models.User{}, w.fail(ctx, op, invalid(op, "Image size should be less than 2MB"), "")
	}
	if err != nil {
		return models.User{}, w.fail(ctx, op, err, "Failed to upload image")
	}
	w.st.SetUser(*u)
	if err := w.sess.SaveUser(ctx, *u); err != nil {
		w.log.Warn("workspace: persist profile", "error", err)
	}
	w.success(op, "Profile image updated!")
	return *u, nil
}

// Users returns the team directory, used to pick assignees and members.
func (w *Workspace) Users(ctx context.Context) ([]models.User, error) {
	users, err := w.api.ListUsers(ctx)
	if err != nil {
		return nil, w.fail(ctx, "list_users", err, "Failed to load users")
	}
	return users, nil
}

// User returns one user from the team directory.
func (w *Workspace) User(ctx context.Context, id models.ID) (models.User, error) {
	u, err := w.api.GetUser(ctx, id)
	if err != nil {
		return models.User{}, w.fail(ctx, "get_user", err, "User not found")
	}
	return *u, nil
}

// RemoveUser removes someone from the team. Only the team owner or an admin may.
func (w *Workspace) RemoveUser(ctx context.Context, id models.ID) error {
	const op = "remove_user"
	if me, ok := w.st.CurrentUser(); !ok || !(me.IsTeamOwner || me.Role == models.RoleAdmin) {
		return w.fail(ctx, op, invalid(op, "Only team owner or admins can remove members"), "")
	}
	if err := w.api.DeleteUser(ctx, id); err != nil {
		return w.fail(ctx, op, err, "Failed to remove member")
	}
	w.success(op, "Member removed successfully")
	return nil
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && strings.Contains(s[strings.IndexByte(s, '@'):], ".")
}
