package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolveHome_override(t *testing.T) {
	t.Parallel()
	got, err := ResolveHome("/custom/home")
	if err != nil {
		t.Fatalf("ResolveHome: %v", err)
	}
	if got != filepath.Clean("/custom/home") {
		t.Fatalf("ResolveHome: got %q", got)
	}
}

func TestResolveHome_env(t *testing.T) {
	t.Setenv("TASKBOARD_HOME", "/env/home")
	got, err := ResolveHome("")
	if err != nil {
		t.Fatalf("ResolveHome: %v", err)
	}
	if got != filepath.Clean("/env/home") {
		t.Fatalf("ResolveHome from env: got %q", got)
	}
}

func TestResolveHome_default(t *testing.T) {
	t.Setenv("TASKBOARD_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("UserHomeDir: %v", err)
	}
	got, err := ResolveHome("")
	if err != nil {
		t.Fatalf("ResolveHome: %v", err)
	}
	want := filepath.Join(home, ".taskboard")
	if got != want {
		t.Fatalf("ResolveHome default: got %q, want %q", got, want)
	}
}

func TestLoad_missingFile(t *testing.T) {
	t.Setenv("TASKBOARD_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	t.Setenv("TASKBOARD_POLL_INTERVAL", "")
	t.Setenv("TASKBOARD_PORT", "")
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseURL() != "http://localhost:5000/api" {
		t.Fatalf("BaseURL = %q", c.BaseURL())
	}
	if c.Interval() != 30*time.Second || c.ListenPort() != DefaultPort {
		t.Fatalf("Interval=%v Port=%d", c.Interval(), c.ListenPort())
	}
}

func TestSave_Load_roundTrip(t *testing.T) {
	t.Setenv("TASKBOARD_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	t.Setenv("TASKBOARD_API_KEY", "")
	t.Setenv("TASKBOARD_POLL_INTERVAL", "")
	t.Setenv("TASKBOARD_PORT", "")
	home := filepath.Join(t.TempDir(), "h")
	want := &Config{APIURL: "https://pm.example.com/api", PollInterval: "1m", Port: 4000, APIKey: "k"}
	if err := Save(home, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(Path(home))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
	got, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
	if got.Interval() != time.Minute {
		t.Fatalf("Interval = %v", got.Interval())
	}
}

func TestLoad_envOverrides(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(Path(home), []byte("api_url: http://file/api\nport: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKBOARD_API_URL", "http://env/api")
	t.Setenv("VITE_API_URL", "http://vite/api")
	t.Setenv("TASKBOARD_PORT", "5055")
	t.Setenv("TASKBOARD_POLL_INTERVAL", "bogus")
	c, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseURL() != "http://env/api" || c.ListenPort() != 5055 {
		t.Fatalf("config = %+v", c)
	}
	if c.Interval() != 30*time.Second {
		t.Fatalf("bogus interval should fall back, got %v", c.Interval())
	}
}

func TestLoad_viteURLFallback(t *testing.T) {
	t.Setenv("TASKBOARD_API_URL", "")
	t.Setenv("VITE_API_URL", "http://vite/api")
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseURL() != "http://vite/api" {
		t.Fatalf("BaseURL = %q", c.BaseURL())
	}
}

func TestLoad_badYAML(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(Path(home), []byte("port: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(home); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TASKBOARD_TEST_ENVFILE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKBOARD_TEST_ENVFILE", "")
	os.Unsetenv("TASKBOARD_TEST_ENVFILE")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("TASKBOARD_TEST_ENVFILE"); got != "from-file" {
		t.Fatalf("env = %q", got)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("LoadEnvFile(\"\"): %v", err)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
