package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNewRootCmd_hasSubcommands(t *testing.T) {
	root := NewRootCmd("test")
	if root == nil {
		t.Fatal("NewRootCmd returned nil")
	}
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "stop", "status", "login", "logout", "whoami", "register", "profile", "project", "task", "member", "user", "notification", "apikey"} {
		if !names[want] {
			t.Errorf("expected subcommand %q", want)
		}
	}
}

func TestNewRootCmd_versionFlag(t *testing.T) {
	root := NewRootCmd("1.2.3")
	if root.Version != "1.2.3" {
		t.Errorf("Version: got %q", root.Version)
	}
	if NewRootCmd("").Version != "dev" {
		t.Error("empty version should default to dev")
	}
}

func TestNewRootCmd_hasPersistentFlags(t *testing.T) {
	root := NewRootCmd("")
	for _, name := range []string{"home", "env-file", "api-url", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s persistent flag", name)
		}
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out, errBuf bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errBuf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestApikeyGenerate(t *testing.T) {
	out, err := run(t, "--home", t.TempDir(), "apikey", "generate")
	if err != nil {
		t.Fatalf("apikey generate: %v", err)
	}
	hexKey := regexp.MustCompile(`(?m)^  ([a-f0-9]{64})$`)
	if !hexKey.MatchString(out) {
		t.Errorf("output should contain a 64-char hex key on its own line; got:\n%s", out)
	}
	if !strings.Contains(out, "TASKBOARD_API_KEY") {
		t.Errorf("output should mention TASKBOARD_API_KEY")
	}
	if !strings.Contains(out, "X-API-Key") {
		t.Errorf("output should mention X-API-Key")
	}
}

func TestApikeyGenerate_save(t *testing.T) {
	home := t.TempDir()
	out, err := run(t, "--home", home, "apikey", "generate", "--save")
	if err != nil {
		t.Fatalf("apikey generate --save: %v", err)
	}
	key := regexp.MustCompile(`(?m)^  ([a-f0-9]{64})$`).FindStringSubmatch(out)
	if key == nil {
		t.Fatalf("no key in output:\n%s", out)
	}
	b, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), key[1]) {
		t.Errorf("config.yaml should carry the key; got:\n%s", b)
	}
}

func TestApikeyGenerate_envFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if _, err := run(t, "--home", t.TempDir(), "apikey", "generate", "--env", envPath); err != nil {
		t.Fatalf("apikey generate --env: %v", err)
	}
	b, err := os.ReadFile(envPath)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if !regexp.MustCompile(`^TASKBOARD_API_KEY=[a-f0-9]{64}\n$`).Match(b) {
		t.Errorf("env file: got %q", b)
	}
}

func TestReadSecret(t *testing.T) {
	t.Setenv("TB_TEST_SECRET", "")
	var prompt bytes.Buffer

	got, err := readSecret(strings.NewReader("ignored\n"), &prompt, "Password: ", "flag", "TB_TEST_SECRET")
	if err != nil || got != "flag" {
		t.Fatalf("flag value: got %q, %v", got, err)
	}
	if prompt.Len() != 0 {
		t.Errorf("flag value should not prompt")
	}

	t.Setenv("TB_TEST_SECRET", "from-env")
	if got, _ := readSecret(strings.NewReader(""), &prompt, "Password: ", "", "TB_TEST_SECRET"); got != "from-env" {
		t.Errorf("env value: got %q", got)
	}

	t.Setenv("TB_TEST_SECRET", "")
	got, err = readSecret(strings.NewReader("s3cret\r\nnext\n"), &prompt, "Password: ", "", "TB_TEST_SECRET")
	if err != nil || got != "s3cret" {
		t.Fatalf("stdin value: got %q, %v", got, err)
	}
	if prompt.String() != "Password: " {
		t.Errorf("prompt: got %q", prompt.String())
	}
}

func TestTaskStatus_rejectsUnknownStatus(t *testing.T) {
	_, err := run(t, "--home", t.TempDir(), "task", "status", "t1", "DONE", "--project", "p1")
	if err == nil || !strings.Contains(err.Error(), "status must be one of") {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestWhoami_notLoggedIn(t *testing.T) {
	_, err := run(t, "--home", t.TempDir(), "--api-url", "http://127.0.0.1:1", "whoami")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected not logged in, got %v", err)
	}
}

// fakeBackend serves the handful of REST routes the session commands touch.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(backendMux())
	t.Cleanup(ts.Close)
	return ts
}

// flakyBackend is fakeBackend with a switch that drops every connection.
func flakyBackend(t *testing.T) (*httptest.Server, *atomic.Bool) {
	t.Helper()
	var down atomic.Bool
	mux := backendMux()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			panic(http.ErrAbortHandler)
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts, &down
}

func backendMux() *http.ServeMux {
	user := map[string]any{"_id": "u1", "name": "Ada", "email": "ada@example.com", "role": "ADMIN"}
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				reply(w, map[string]string{"message": "unauthorized"})
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			reply(w, map[string]string{"message": "Invalid credentials"})
			return
		}
		reply(w, map[string]any{"token": "tok-1", "user": user})
	})
	mux.HandleFunc("GET /auth/me", authed(func(w http.ResponseWriter, r *http.Request) { reply(w, user) }))
	mux.HandleFunc("GET /projects", authed(func(w http.ResponseWriter, r *http.Request) {
		reply(w, []map[string]any{
			{"_id": "p1", "name": "Alpha", "status": "ACTIVE", "priority": "HIGH"},
			{"_id": "p2", "name": "Beta", "status": "PLANNING", "priority": "LOW"},
		})
	}))
	mux.HandleFunc("GET /notifications", authed(func(w http.ResponseWriter, r *http.Request) {
		reply(w, []map[string]any{})
	}))
	mux.HandleFunc("GET /notifications/unread-count", authed(func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]int{"count": 0})
	}))
	mux.HandleFunc("GET /users", authed(func(w http.ResponseWriter, r *http.Request) {
		reply(w, []map[string]any{user, {"_id": "u2", "name": "Bo", "email": "bo@example.com", "role": "MEMBER"}})
	}))
	mux.HandleFunc("GET /tasks/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "t9" {
			w.WriteHeader(http.StatusNotFound)
			reply(w, map[string]string{"message": "Task not found"})
			return
		}
		reply(w, map[string]any{"_id": "t9", "title": "Write docs", "status": "TODO", "type": "TASK", "priority": "LOW", "project": "p1"})
	}))
	mux.HandleFunc("GET /tasks/{id}/comments", authed(func(w http.ResponseWriter, r *http.Request) {
		reply(w, []map[string]any{{"_id": "c1", "user": user, "content": "on it"}})
	}))
	return mux
}

func TestSessionCommands_againstBackend(t *testing.T) {
	t.Setenv("TASKBOARD_PASSWORD", "")
	ts := fakeBackend(t)
	home := t.TempDir()
	base := []string{"--home", home, "--api-url", ts.URL}

	if _, err := run(t, append(base, "login", "--email", "ada@example.com", "--password", "wrong")...); err == nil {
		t.Fatal("login with a bad password should fail")
	}

	out, err := run(t, append(base, "login", "--email", "ada@example.com", "--password", "hunter22")...)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Welcome back, Ada!") {
		t.Errorf("login output: %q", out)
	}

	out, err = run(t, append(base, "whoami")...)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if strings.TrimSpace(out) != "Ada <ada@example.com> (ADMIN)" {
		t.Errorf("whoami: got %q", out)
	}

	out, err = run(t, append(base, "project", "list", "--status", "active")...)
	if err != nil {
		t.Fatalf("project list: %v", err)
	}
	if !strings.Contains(out, "Alpha") || strings.Contains(out, "Beta") {
		t.Errorf("project list --status active: got\n%s", out)
	}

	out, err = run(t, append(base, "project", "list", "--json")...)
	if err != nil {
		t.Fatalf("project list --json: %v", err)
	}
	var projects []map[string]any
	if err := json.Unmarshal([]byte(out), &projects); err != nil {
		t.Fatalf("decode project list: %v", err)
	}
	if len(projects) != 2 {
		t.Errorf("projects: got %d", len(projects))
	}

	if _, err := run(t, append(base, "logout")...); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := run(t, append(base, "whoami")...); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("whoami after logout: %v", err)
	}
}

func TestTaskShowAndUserList_againstBackend(t *testing.T) {
	t.Setenv("TASKBOARD_PASSWORD", "")
	ts := fakeBackend(t)
	base := []string{"--home", t.TempDir(), "--api-url", ts.URL}
	if _, err := run(t, append(base, "login", "--email", "ada@example.com", "--password", "hunter22")...); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := run(t, append(base, "task", "show", "t9", "--project", "p1")...)
	if err != nil {
		t.Fatalf("task show: %v", err)
	}
	if !strings.Contains(out, "Write docs") || !strings.Contains(out, "Ada: on it") {
		t.Errorf("task show output:\n%s", out)
	}
	if _, err := run(t, append(base, "task", "show", "nope", "--project", "p1")...); err == nil || err.Error() != "Task not found" {
		t.Errorf("task show missing: %v", err)
	}

	out, err = run(t, append(base, "user", "list")...)
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	if !strings.Contains(out, "bo@example.com") || !strings.Contains(out, "ADMIN") {
		t.Errorf("user list output:\n%s", out)
	}
	if _, err := run(t, append(base, "task", "share", "t9")...); err == nil || err.Error() != "Please select at least one user" {
		t.Errorf("share without users: %v", err)
	}
}

func TestWhoami_offlineKeepsSession(t *testing.T) {
	t.Setenv("TASKBOARD_PASSWORD", "")
	ts, down := flakyBackend(t)
	base := []string{"--home", t.TempDir(), "--api-url", ts.URL}
	if _, err := run(t, append(base, "login", "--email", "ada@example.com", "--password", "hunter22")...); err != nil {
		t.Fatalf("login: %v", err)
	}

	down.Store(true)
	_, err := run(t, append(base, "whoami")...)
	if err == nil || !strings.Contains(err.Error(), "Cannot connect to server") {
		t.Fatalf("whoami offline: %v", err)
	}

	down.Store(false)
	out, err := run(t, append(base, "whoami")...)
	if err != nil || !strings.Contains(out, "Ada") {
		t.Fatalf("whoami back online = %q, %v", out, err)
	}
}
