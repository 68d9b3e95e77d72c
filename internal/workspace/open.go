package workspace

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/otel"
	"github.com/GITHIYON49/taskmanagementapp/internal/session"
	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/internal/store"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
)

// OpenOptions locates the local database and the backend.
type OpenOptions struct {
	Home    string
	BaseURL string
	Logger  *slog.Logger
}

// Handle is an opened workspace with the resources it owns.
type Handle struct {
	*Workspace
	Client *client.Client
	Cache  store.Store
}

// Close releases the local database.
func (h *Handle) Close() error { return h.Cache.Close() }

// Open wires a Workspace over the sqlite database under o.Home and a REST client
// for o.BaseURL. Every backend response is recorded as an API-call metric.
func Open(o OpenOptions) (*Handle, error) {
	cache, err := store.Open(o.Home)
	if err != nil {
		return nil, err
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.BaseURL == "" {
		o.BaseURL = client.DefaultBaseURL
	}
	sess := session.NewManager(store.Bucket{Store: cache, Origin: o.BaseURL}, o.Logger)
	c := client.New(o.BaseURL, sess.Token)
	c.OnResponse = func(method, path string, status int, d time.Duration) {
		otel.RecordAPICall(context.Background(), method, routeOf(path), status, d)
	}
	ws := New(Options{
		API:     c,
		State:   state.New(state.WithLogger(o.Logger)),
		Session: sess,
		Cache:   cache,
		Origin:  o.BaseURL,
		Logger:  o.Logger,
	})
	return &Handle{Workspace: ws, Client: c, Cache: cache}, nil
}

// Session returns the persisted session manager.
func (w *Workspace) Session() *session.Manager { return w.sess }

// routeOf replaces id segments of an API path with ":id" to bound metric cardinality.
func routeOf(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.ContainsAny(p, "0123456789") {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
