package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/session"
	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/internal/store"
	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// stubBackend overrides the calls these tests reach; any other call panics
// through the nil embedded interface.
type stubBackend struct {
	workspace.Backend
	mu       sync.Mutex
	projects []models.Project
	seq      int
	failTask error
}

func (b *stubBackend) ListProjects(context.Context) ([]models.Project, error) {
	return models.CloneProjects(b.projects), nil
}

func (b *stubBackend) CreateProject(_ context.Context, in client.ProjectInput) (*models.Project, error) {
	b.mu.Lock()
	b.seq++
	b.mu.Unlock()
	return &models.Project{ID: models.ID("srv-" + in.Name), Name: in.Name, Status: models.ProjectPlanning}, nil
}

func (b *stubBackend) UpdateTask(_ context.Context, id models.ID, p models.TaskPatch) (*models.Task, error) {
	if b.failTask != nil {
		return nil, b.failTask
	}
	t := p.Apply(models.Task{ID: id, Title: "X"})
	return &t, nil
}

func (b *stubBackend) GetTask(context.Context, models.ID) (*models.Task, error) {
	return nil, &client.APIError{Status: http.StatusNotFound, Message: "Task not found"}
}

func (b *stubBackend) RemoveAttachment(_ context.Context, taskID, _ models.ID) (*models.Task, error) {
	return &models.Task{ID: taskID}, nil
}

func (b *stubBackend) ListNotifications(context.Context) ([]models.Notification, error) {
	return []models.Notification{{ID: "n1"}, {ID: "n2", Read: true}}, nil
}

func (b *stubBackend) UnreadCount(context.Context) (int, error) { return 1, nil }

func (b *stubBackend) MarkNotificationRead(context.Context, models.ID) error { return nil }

func newTestApp(t *testing.T, opts ServerOptions) (*App, *stubBackend, *httptest.Server) {
	t.Helper()
	cache, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	api := &stubBackend{projects: []models.Project{
		{ID: "p1", Name: "Alpha", Status: models.ProjectActive, Priority: models.PriorityHigh,
			Tasks: []models.Task{{ID: "t1", Title: "X", Status: models.StatusTodo, Assignee: &models.User{ID: "u1"},
				Attachments: []models.Attachment{{ID: "a1", Name: "notes.txt"}, {ID: "a2", Name: "plan.pdf"}}}}},
		{ID: "p2", Name: "Beta", Status: models.ProjectPlanning},
	}}
	st := state.New()
	st.SetUser(models.User{ID: "u1", Name: "Ada"})
	ws := workspace.New(workspace.Options{
		API:     api,
		State:   st,
		Session: session.NewManager(store.Bucket{Store: cache, Origin: "test"}, nil),
	})
	if err := ws.RefreshProjects(context.Background()); err != nil {
		t.Fatalf("RefreshProjects: %v", err)
	}
	opts.Workspace = ws
	app, err := NewApp(opts)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	ts := httptest.NewServer(app.Server.Handler)
	t.Cleanup(ts.Close)
	return app, api, ts
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestNewApp_requiresWorkspace(t *testing.T) {
	t.Parallel()
	if _, err := NewApp(ServerOptions{}); err == nil {
		t.Fatal("expected error without workspace")
	}
}

func TestServerSmoke(t *testing.T) {
	t.Parallel()
	_, _, ts := newTestApp(t, ServerOptions{})

	var health map[string]any
	if code := doJSON(t, http.MethodGet, ts.URL+"/health", "", &health); code != 200 || health["ok"] != true {
		t.Fatalf("/health = %d %v", code, health)
	}

	var projects []models.Project
	doJSON(t, http.MethodGet, ts.URL+"/projects?status=active", "", &projects)
	if len(projects) != 1 || projects[0].ID != "p1" {
		t.Fatalf("filtered projects = %+v", projects)
	}
	doJSON(t, http.MethodGet, ts.URL+"/projects?search=zzz", "", &projects)
	if len(projects) != 0 {
		t.Fatalf("search miss = %+v", projects)
	}

	var created models.Project
	if code := doJSON(t, http.MethodPost, ts.URL+"/projects", `{"name":"Gamma"}`, &created); code != http.StatusCreated {
		t.Fatalf("POST /projects = %d", code)
	}
	if created.ID != "srv-Gamma" {
		t.Fatalf("created = %+v", created)
	}
	var snap state.Snapshot
	doJSON(t, http.MethodGet, ts.URL+"/state", "", &snap)
	if len(snap.Projects) != 3 || snap.Projects[0].ID != "srv-Gamma" {
		t.Fatalf("state projects = %+v", snap.Projects)
	}

	var errBody struct{ Error string }
	if code := doJSON(t, http.MethodPost, ts.URL+"/projects", `{"name":"  "}`, &errBody); code != 400 || errBody.Error != "Project name is required" {
		t.Fatalf("empty name = %d %q", code, errBody.Error)
	}
	if code := doJSON(t, http.MethodPost, ts.URL+"/projects", `{`, &errBody); code != 400 || errBody.Error != "invalid json" {
		t.Fatalf("bad json = %d %q", code, errBody.Error)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/projects/p9/stats", "", &errBody); code != 404 {
		t.Fatalf("stats miss = %d", code)
	}
}

func TestTaskRoutes(t *testing.T) {
	t.Parallel()
	_, api, ts := newTestApp(t, ServerOptions{})

	var task models.Task
	if code := doJSON(t, http.MethodPatch, ts.URL+"/projects/p1/tasks/t1", `{"status":"COMPLETED","assignee":null}`, &task); code != 200 {
		t.Fatalf("PATCH task = %d", code)
	}
	if task.Status != models.StatusCompleted || task.Assignee != nil {
		t.Fatalf("patched task = %+v", task)
	}

	var stats state.ProjectStats
	doJSON(t, http.MethodGet, ts.URL+"/projects/p1/stats", "", &stats)
	if stats.Total != 1 || stats.Completed != 1 || stats.CompletionRate != 100 {
		t.Fatalf("stats = %+v", stats)
	}

	var mine []state.ProjectTask
	doJSON(t, http.MethodGet, ts.URL+"/me/tasks", "", &mine)
	if len(mine) != 0 {
		t.Fatalf("assigned after unassign = %+v", mine)
	}

	api.failTask = &client.APIError{Status: http.StatusForbidden, Message: "Not allowed"}
	var errBody struct{ Error string }
	if code := doJSON(t, http.MethodPatch, ts.URL+"/projects/p1/tasks/t1", `{"title":"Y"}`, &errBody); code != 403 || errBody.Error != "Not allowed" {
		t.Fatalf("forbidden = %d %q", code, errBody.Error)
	}
	doJSON(t, http.MethodGet, ts.URL+"/projects/p1/tasks/t1", "", &task)
	if task.Title != "X" {
		t.Fatalf("title after failed update = %q", task.Title)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/projects/p1/tasks/nope", "", &errBody); code != 404 || errBody.Error != "Task not found" {
		t.Fatalf("task miss = %d %q", code, errBody.Error)
	}

	if code := doJSON(t, http.MethodDelete, ts.URL+"/projects/p1/tasks/t1/attachments/a1", "", &task); code != 200 {
		t.Fatalf("DELETE attachment = %d", code)
	}
	if len(task.Attachments) != 1 || task.Attachments[0].ID != "a2" {
		t.Fatalf("attachments after delete = %+v", task.Attachments)
	}
}

func TestNotificationRoutes(t *testing.T) {
	t.Parallel()
	app, _, ts := newTestApp(t, ServerOptions{})
	if err := app.Workspace.RefreshNotifications(context.Background()); err != nil {
		t.Fatalf("RefreshNotifications: %v", err)
	}
	var body struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/notifications?unread=true", "", &body)
	if len(body.Notifications) != 1 || body.UnreadCount != 1 {
		t.Fatalf("unread notifications = %+v", body)
	}
	var res map[string]int
	doJSON(t, http.MethodPost, ts.URL+"/notifications/n1/read", "", &res)
	if res["unread_count"] != 0 {
		t.Fatalf("after read = %v", res)
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Parallel()
	_, _, ts := newTestApp(t, ServerOptions{APIKey: "secret"})
	if code := doJSON(t, http.MethodGet, ts.URL+"/health", "", nil); code != 200 {
		t.Fatalf("/health without key = %d", code)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/state", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("/state without key = %d", code)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/state?api_key=secret", "", nil); code != 200 {
		t.Fatalf("/state with key = %d", code)
	}
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()
	_, _, ts := newTestApp(t, ServerOptions{MaxBodyBytes: 16})
	var errBody struct{ Error string }
	body := `{"name":"` + strings.Repeat("a", 64) + `"}`
	if code := doJSON(t, http.MethodPost, ts.URL+"/projects", body, &errBody); code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body = %d %q", code, errBody.Error)
	}
}

func TestPlainMetrics(t *testing.T) {
	t.Parallel()
	_, _, ts := newTestApp(t, ServerOptions{})
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	sc := bufio.NewScanner(resp.Body)
	found := false
	for sc.Scan() {
		if sc.Text() == "taskboard_projects 2" {
			found = true
		}
	}
	if !found {
		t.Fatal("taskboard_projects gauge missing")
	}
}

func TestForward_streamsStateChanges(t *testing.T) {
	t.Parallel()
	app, _, ts := newTestApp(t, ServerOptions{})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go app.Forward(ctx)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /stream: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sawSnapshot := false
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		if strings.Contains(line, `"type":"snapshot"`) {
			sawSnapshot = true
			// Forward may subscribe after the stream opens; keep mutating until a change lands.
			go func() {
				for ctx.Err() == nil {
					app.Workspace.State().SetLoading(false)
					time.Sleep(10 * time.Millisecond)
				}
			}()
			continue
		}
		if strings.Contains(line, `"type":"state_change"`) && strings.Contains(line, `"op":"set_loading"`) {
			if !sawSnapshot {
				t.Fatal("change arrived before snapshot")
			}
			return
		}
	}
	t.Fatalf("stream ended without set_loading change: %v", sc.Err())
}
