package workspace

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/GITHIYON49/taskmanagementapp/internal/session"
	"github.com/GITHIYON49/taskmanagementapp/internal/state"
	"github.com/GITHIYON49/taskmanagementapp/internal/store"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// fakeBackend is an in-memory Backend. Setting errs[method] makes that call fail.
type fakeBackend struct {
	mu       sync.Mutex
	errs     map[string]error
	user     models.User
	token    string
	projects []models.Project
	notes    []models.Notification
	unread   int
	seq      int
	calls    []string
	// gate, when set, is received from inside CreateProject and CreateTask so
	// tests can observe optimistic state.
	gate chan struct{}
}

func newFake() *fakeBackend {
	return &fakeBackend{errs: map[string]error{}, user: models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}, token: "tok"}
}

func (f *fakeBackend) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeBackend) nextID(prefix string) models.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return models.ID(fmt.Sprintf("%s%d", prefix, f.seq))
}

func (f *fakeBackend) wait() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeBackend) Register(context.Context, client.RegisterRequest) error { return f.call("Register") }

func (f *fakeBackend) Login(_ context.Context, email, _ string) (*models.AuthResponse, error) {
	if err := f.call("Login"); err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: f.token, User: f.user}, nil
}

func (f *fakeBackend) Me(context.Context) (*models.User, error) {
	if err := f.call("Me"); err != nil {
		return nil, err
	}
	u := f.user
	return &u, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, u client.ProfileUpdate) (*models.User, error) {
	if err := f.call("UpdateProfile"); err != nil {
		return nil, err
	}
	out := f.user
	out.Name, out.Email = u.Name, u.Email
	return &out, nil
}

func (f *fakeBackend) ChangePassword(context.Context, string, string) error {
	return f.call("ChangePassword")
}

func (f *fakeBackend) UploadProfileImage(_ context.Context, filename string, r io.Reader) (*models.User, error) {
	if err := f.call("UploadProfileImage"); err != nil {
		return nil, err
	}
	b, _ := io.ReadAll(r)
	if len(b) > models.MaxAvatarBytes {
		return nil, client.ErrTooLarge
	}
	out := f.user
	out.Image = "/uploads/" + filename
	return &out, nil
}

func (f *fakeBackend) ListProjects(context.Context) ([]models.Project, error) {
	if err := f.call("ListProjects"); err != nil {
		return nil, err
	}
	return models.CloneProjects(f.projects), nil
}

func (f *fakeBackend) GetProject(_ context.Context, id models.ID) (*models.Project, error) {
	if err := f.call("GetProject"); err != nil {
		return nil, err
	}
	for _, p := range f.projects {
		if p.ID == id {
			p = p.Clone()
			return &p, nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "Project not found"}
}

func (f *fakeBackend) CreateProject(_ context.Context, in client.ProjectInput) (*models.Project, error) {
	f.wait()
	if err := f.call("CreateProject"); err != nil {
		return nil, err
	}
	p := models.Project{ID: f.nextID("p"), Name: in.Name, Status: in.Status}
	return &p, nil
}

func (f *fakeBackend) UpdateProject(_ context.Context, id models.ID, in client.ProjectInput) (*models.Project, error) {
	if err := f.call("UpdateProject"); err != nil {
		return nil, err
	}
	return &models.Project{ID: id, Name: in.Name, Status: in.Status}, nil
}

func (f *fakeBackend) DeleteProject(context.Context, models.ID) error { return f.call("DeleteProject") }

func (f *fakeBackend) AddMember(_ context.Context, projectID, userID models.ID, role string) (*models.Project, error) {
	if err := f.call("AddMember"); err != nil {
		return nil, err
	}
	return &models.Project{ID: projectID, Members: []models.Member{{ID: f.nextID("m"), User: models.User{ID: userID, Name: "Bo"}, Role: role}}}, nil
}

func (f *fakeBackend) RemoveMember(_ context.Context, projectID, _ models.ID) (*models.Project, error) {
	if err := f.call("RemoveMember"); err != nil {
		return nil, err
	}
	return &models.Project{ID: projectID}, nil
}

func (f *fakeBackend) GetTask(_ context.Context, id models.ID) (*models.Task, error) {
	if err := f.call("GetTask"); err != nil {
		return nil, err
	}
	for _, p := range f.projects {
		for _, t := range p.Tasks {
			if t.ID == id {
				t = t.Clone()
				return &t, nil
			}
		}
	}
	return nil, &client.APIError{Status: 404, Message: "Task not found"}
}

func (f *fakeBackend) CreateTask(_ context.Context, projectID models.ID, in client.TaskInput) (*models.Task, error) {
	f.wait()
	if err := f.call("CreateTask"); err != nil {
		return nil, err
	}
	t := models.Task{ID: f.nextID("t"), Title: in.Title, Status: models.StatusTodo, Project: projectID}
	return &t, nil
}

func (f *fakeBackend) UpdateTask(_ context.Context, id models.ID, patch models.TaskPatch) (*models.Task, error) {
	if err := f.call("UpdateTask"); err != nil {
		return nil, err
	}
	t := patch.Apply(models.Task{ID: id, Title: "server title"})
	return &t, nil
}

func (f *fakeBackend) DeleteTask(context.Context, models.ID) error { return f.call("DeleteTask") }

func (f *fakeBackend) ShareTask(_ context.Context, _ models.ID, r client.ShareRequest) (*client.ShareResult, error) {
	if err := f.call("ShareTask"); err != nil {
		return nil, err
	}
	out := &client.ShareResult{}
	for _, id := range r.UserIDs {
		out.SharedWith = append(out.SharedWith, models.User{ID: id})
	}
	return out, nil
}

func (f *fakeBackend) AddAttachment(_ context.Context, taskID models.ID, filename string, r io.Reader) (*models.Task, error) {
	if err := f.call("AddAttachment"); err != nil {
		return nil, err
	}
	b, _ := io.ReadAll(r)
	return &models.Task{ID: taskID, Attachments: []models.Attachment{
		{ID: "old", Name: "old.txt"},
		{ID: f.nextID("a"), Name: filename, Size: int64(len(b))},
	}}, nil
}

func (f *fakeBackend) RemoveAttachment(_ context.Context, taskID, _ models.ID) (*models.Task, error) {
	if err := f.call("RemoveAttachment"); err != nil {
		return nil, err
	}
	return &models.Task{ID: taskID}, nil
}

func (f *fakeBackend) ListComments(_ context.Context, taskID models.ID) ([]models.Comment, error) {
	if err := f.call("ListComments"); err != nil {
		return nil, err
	}
	return []models.Comment{{ID: "c-" + taskID, User: f.user, Content: "first"}}, nil
}

func (f *fakeBackend) CreateComment(_ context.Context, _ models.ID, content string) (*models.Comment, error) {
	if err := f.call("CreateComment"); err != nil {
		return nil, err
	}
	return &models.Comment{ID: f.nextID("c"), User: f.user, Content: content}, nil
}

func (f *fakeBackend) ListNotifications(context.Context) ([]models.Notification, error) {
	if err := f.call("ListNotifications"); err != nil {
		return nil, err
	}
	return append([]models.Notification(nil), f.notes...), nil
}

func (f *fakeBackend) UnreadCount(context.Context) (int, error) {
	if err := f.call("UnreadCount"); err != nil {
		return 0, err
	}
	return f.unread, nil
}

func (f *fakeBackend) MarkNotificationRead(context.Context, models.ID) error {
	return f.call("MarkNotificationRead")
}

func (f *fakeBackend) MarkAllNotificationsRead(context.Context) error {
	return f.call("MarkAllNotificationsRead")
}

func (f *fakeBackend) ListUsers(context.Context) ([]models.User, error) {
	if err := f.call("ListUsers"); err != nil {
		return nil, err
	}
	return []models.User{f.user}, nil
}

func (f *fakeBackend) GetUser(_ context.Context, id models.ID) (*models.User, error) {
	if err := f.call("GetUser"); err != nil {
		return nil, err
	}
	if id == f.user.ID {
		u := f.user
		return &u, nil
	}
	return nil, &client.APIError{Status: 404, Message: "User not found"}
}

func (f *fakeBackend) DeleteUser(context.Context, models.ID) error { return f.call("DeleteUser") }

type harness struct {
	ws    *Workspace
	api   *fakeBackend
	st    *state.Store
	sess  *session.Manager
	cache store.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cache, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	api := newFake()
	st := state.New()
	sess := session.NewManager(store.Bucket{Store: cache, Origin: "http://api.test"}, nil)
	ws := New(Options{API: api, State: st, Session: sess, Cache: cache, Origin: "http://api.test"})
	return &harness{ws: ws, api: api, st: st, sess: sess, cache: cache}
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	if _, err := h.ws.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func drain(ws *Workspace) []Notice {
	var out []Notice
	for {
		select {
		case n := <-ws.Notices():
			out = append(out, n)
		default:
			return out
		}
	}
}
