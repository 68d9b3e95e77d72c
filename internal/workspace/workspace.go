// Package workspace ties the backend client, the state store and the persisted
// session together. Each call performs the network request first (or an optimistic
// local insert) and then dispatches the matching store operation with the data the
// server confirmed.
package workspace

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/session"
	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/internal/store"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// Backend is the subset of the REST API the workspace drives. *client.Client implements it.
type Backend interface {
	Register(ctx context.Context, r client.RegisterRequest) error
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, u client.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, current, next string) error
	UploadProfileImage(ctx context.Context, filename string, r io.Reader) (*models.User, error)

	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id models.ID) (*models.Project, error)
	CreateProject(ctx context.Context, in client.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id models.ID, in client.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id models.ID) error
	AddMember(ctx context.Context, projectID, userID models.ID, role string) (*models.Project, error)
	RemoveMember(ctx context.Context, projectID, userID models.ID) (*models.Project, error)

	GetTask(ctx context.Context, id models.ID) (*models.Task, error)
	CreateTask(ctx context.Context, projectID models.ID, in client.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id models.ID, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id models.ID) error
	ShareTask(ctx context.Context, id models.ID, r client.ShareRequest) (*client.ShareResult, error)
	AddAttachment(ctx context.Context, taskID models.ID, filename string, r io.Reader) (*models.Task, error)
	RemoveAttachment(ctx context.Context, taskID, attachmentID models.ID) (*models.Task, error)
	ListComments(ctx context.Context, taskID models.ID) ([]models.Comment, error)
	CreateComment(ctx context.Context, taskID models.ID, content string) (*models.Comment, error)

	ListNotifications(ctx context.Context) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id models.ID) error
	MarkAllNotificationsRead(ctx context.Context) error

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id models.ID) (*models.User, error)
	DeleteUser(ctx context.Context, id models.ID) error
}

// Options configures a Workspace. API, State and Session are required.
type Options struct {
	API     Backend
	State   *state.Store
	Session *session.Manager
	// Cache, when set, holds the last project snapshot for warm starts.
	Cache  store.Store
	Origin string
	Logger *slog.Logger
}

// Workspace is safe for concurrent use.
type Workspace struct {
	api     Backend
	st      *state.Store
	sess    *session.Manager
	cache   store.Store
	origin  string
	log     *slog.Logger
	notices chan Notice
	now     func() time.Time
}

// New returns a Workspace.
func New(o Options) *Workspace {
	log := o.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Workspace{
		api:     o.API,
		st:      o.State,
		sess:    o.Session,
		cache:   o.Cache,
		origin:  o.Origin,
		log:     log,
		notices: make(chan Notice, 64),
		now:     time.Now,
	}
}

// State returns the underlying store for selectors and subscriptions.
func (w *Workspace) State() *state.Store { return w.st }

// Notices delivers user-facing success and failure messages. Notices are dropped
// when nobody drains the channel.
func (w *Workspace) Notices() <-chan Notice { return w.notices }

func (w *Workspace) notify(level Level, op, msg string) {
	select {
	case w.notices <- Notice{Level: level, Op: op, Message: msg, At: w.now()}:
	default:
	}
}

func (w *Workspace) success(op, msg string) { w.notify(LevelSuccess, op, msg) }

// SaveSnapshot writes the current projects and notifications to the cache.
func (w *Workspace) SaveSnapshot(ctx context.Context) error {
	if w.cache == nil {
		return nil
	}
	snap := w.st.Snapshot()
	cached := store.Snapshot{
		Projects:      snap.Projects,
		Notifications: snap.Notifications,
		UnreadCount:   snap.UnreadCount,
		SavedAt:       w.now(),
	}
	if snap.User != nil {
		cached.UserID = snap.User.ID
	}
	return w.cache.SaveSnapshot(ctx, w.origin, cached)
}

// restoreSnapshot loads a cached snapshot for userID into the store. A snapshot
// saved for another user is ignored.
func (w *Workspace) restoreSnapshot(ctx context.Context, userID models.ID) bool {
	if w.cache == nil {
		return false
	}
	snap, err := w.cache.LoadSnapshot(ctx, w.origin)
	if err != nil {
		w.log.Warn("workspace: load cached snapshot", "error", err)
		return false
	}
	if snap == nil || snap.UserID != userID {
		return false
	}
	w.st.SetProjects(snap.Projects)
	w.st.SetNotifications(snap.Notifications)
	w.st.SetUnreadCount(snap.UnreadCount)
	w.log.Debug("workspace: restored cached snapshot", "projects", len(snap.Projects), "saved_at", snap.SavedAt)
	return true
}

func (w *Workspace) persist(ctx context.Context) {
	if err := w.SaveSnapshot(ctx); err != nil {
		w.log.Warn("workspace: save snapshot", "error", err)
	}
}
