// Package httpapi exposes the local workspace over HTTP: read-only views of the
// state store, the mutating workspace calls, and an SSE stream of store changes.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServerOptions configures the bridge server.
type ServerOptions struct {
	Addr           string
	Dev            bool
	APIKey         string       // if set, require X-API-Key header or query api_key
	MetricsHandler http.Handler // served at /metrics when set
	UseOtelHTTP    bool
	Workspace      *workspace.Workspace
	Logger         *slog.Logger
	MaxBodyBytes   int64
}

// App holds the HTTP server, the SSE hub and the workspace it serves.
type App struct {
	Server    *http.Server
	Hub       *SSEHub
	Workspace *workspace.Workspace
	log       *slog.Logger
}

// NewApp registers every route over opts.Workspace.
func NewApp(opts ServerOptions) (*App, error) {
	if opts.Workspace == nil {
		return nil, errors.New("httpapi: workspace is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = models.DefaultMaxRequestBodyBytes
	}
	app := &App{Hub: NewSSEHub(), Workspace: opts.Workspace, log: log}
	app.Hub.Hello = func() any { return opts.Workspace.State().Snapshot() }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	} else {
		mux.HandleFunc("GET /metrics", app.plainMetrics)
	}
	mux.HandleFunc("GET /stream", app.Hub.Handler())
	app.routes(mux)

	chain := []middleware{logRequests(log), capBodies(opts.MaxBodyBytes)}
	if opts.Dev {
		chain = append(chain, allowCORS)
	}
	if opts.APIKey != "" {
		chain = append(chain, requireAPIKey(opts.APIKey))
	}
	handler := wrap(mux, chain...)
	if opts.UseOtelHTTP {
		handler = otelhttp.NewHandler(handler, "taskboard")
	}
	app.Server = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // /stream is long-lived
		IdleTimeout:       60 * time.Second,
	}
	return app, nil
}

// plainMetrics is the /metrics fallback when OpenTelemetry is disabled.
func (a *App) plainMetrics(w http.ResponseWriter, r *http.Request) {
	d := a.Workspace.State().DashboardStats()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "# TYPE taskboard_projects gauge\ntaskboard_projects %d\n", d.Projects)
	_, _ = fmt.Fprintf(w, "# TYPE taskboard_tasks gauge\ntaskboard_tasks{status=\"completed\"} %d\n", d.CompletedTasks)
	_, _ = fmt.Fprintf(w, "taskboard_tasks{status=\"open\"} %d\n", d.Tasks-d.CompletedTasks)
	_, _ = fmt.Fprintf(w, "# TYPE taskboard_unread_notifications gauge\ntaskboard_unread_notifications %d\n", d.Notifications)
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeJSONError sends a JSON body {"error": "message"} with the given status code.
func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": message})
}

// writeWorkspaceError maps a failed workspace call to a status code and its
// user-facing message.
func writeWorkspaceError(w http.ResponseWriter, err error) {
	code := http.StatusBadGateway
	switch status := client.StatusOf(err); {
	case errors.Is(err, workspace.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, client.ErrTimeout):
		code = http.StatusGatewayTimeout
	case errors.Is(err, client.ErrTooLarge):
		code = http.StatusRequestEntityTooLarge
	case status >= 400 && status < 500:
		code = status
	}
	writeJSONError(w, code, workspace.Message(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
