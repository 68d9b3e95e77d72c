// Package state holds the in-memory snapshot of the signed-in user's projects, tasks,
// and notifications, and the fixed set of operations that mutate it.
//
// Every operation is synchronous, performs no I/O, and never fails: a missing target
// is a no-op. Callers read state back through selectors, which return copies, or
// watch changes through Subscribe.
package state

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/otel"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Projects      []models.Project      `json:"projects"`
	Loading       bool                  `json:"loading"`
	Error         string                `json:"error,omitempty"`
	User          *models.User          `json:"user,omitempty"`
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// Store is the state container. The zero value is not usable; call New.
type Store struct {
	mu            sync.RWMutex
	projects      []models.Project
	loading       bool
	err           string
	user          *models.User
	notifications []models.Notification
	unread        int
	pending       map[models.ID]pendingInsert
	seq           uint64

	hub *hub
	log *slog.Logger
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for miss diagnostics. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBuffer sets the per-subscriber channel buffer.
func WithBuffer(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.hub.buffer = n
		}
	}
}

// WithClock overrides the time source used to stamp changes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		pending: make(map[models.ID]pendingInsert),
		hub:     newHub(models.DefaultSSEChannelBuffer),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// apply runs fn under the write lock and publishes the change before releasing
// it, so subscribers see changes in mutation order. fn reports whether it found
// its target.
func (s *Store) apply(op Op, projectID, taskID models.ID, fn func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	applied := fn()
	s.seq++

	if !applied {
		s.log.Debug("state: target not found", "op", string(op), "project_id", projectID.String(), "task_id", taskID.String())
	}
	otel.RecordStoreOp(context.Background(), string(op), applied)
	s.hub.publish(Change{Seq: s.seq, Op: op, ProjectID: projectID, TaskID: taskID, Applied: applied, At: s.now()})
}

// projectIndex returns the index of the project with id, or -1. Caller holds the lock.
func (s *Store) projectIndex(id models.ID) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// taskIndex returns the project and task indexes, or -1s. Caller holds the lock.
func (s *Store) taskIndex(projectID, taskID models.ID) (int, int) {
	pi := s.projectIndex(projectID)
	if pi < 0 {
		return -1, -1
	}
	for ti := range s.projects[pi].Tasks {
		if s.projects[pi].Tasks[ti].ID == taskID {
			return pi, ti
		}
	}
	return pi, -1
}

// Snapshot returns a deep copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Projects:      models.CloneProjects(s.projects),
		Loading:       s.loading,
		Error:         s.err,
		Notifications: append([]models.Notification(nil), s.notifications...),
		UnreadCount:   s.unread,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Subscribe registers a change listener. The returned cancel func unregisters it and
// closes the channel. Slow subscribers miss changes rather than blocking writers.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := s.hub.subscribe()
	return ch, func() { s.hub.unsubscribe(ch) }
}

// Reset clears everything, as on logout.
func (s *Store) Reset() {
	s.apply(OpReset, "", "", func() bool {
		s.projects = nil
		s.loading = false
		s.err = ""
		s.user = nil
		s.notifications = nil
		s.unread = 0
		s.pending = make(map[models.ID]pendingInsert)
		return true
	})
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.apply(OpSetLoading, "", "", func() bool {
		s.loading = loading
		return true
	})
}

// SetError records an error message and clears the loading flag.
func (s *Store) SetError(msg string) {
	s.apply(OpSetError, "", "", func() bool {
		s.err = msg
		s.loading = false
		return true
	})
}

// SetUser records the signed-in user.
func (s *Store) SetUser(u models.User) {
	s.apply(OpSetUser, "", "", func() bool {
		s.user = &u
		return true
	})
}

// ClearUser forgets the signed-in user.
func (s *Store) ClearUser() {
	s.apply(OpClearUser, "", "", func() bool {
		s.user = nil
		return true
	})
}
