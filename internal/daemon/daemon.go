// Package daemon runs the local bridge: the HTTP API over the workspace, the SSE
// change stream, and the notification poller, as a singleton per home directory.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/config"
	"github.com/GITHIYON49/taskmanagementapp/internal/httpapi"
	"github.com/GITHIYON49/taskmanagementapp/internal/otel"
	"github.com/GITHIYON49/taskmanagementapp/internal/poller"
	"github.com/GITHIYON49/taskmanagementapp/internal/session"
	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
)

var errNotRunning = errors.New("taskboard is not running")

// ErrNotLoggedIn is returned by StartForeground when no session is stored.
var ErrNotLoggedIn = errors.New("not logged in; run `taskboard login` first")

// StartForeground serves the bridge until ctx is canceled.
func StartForeground(ctx context.Context, opts StartOptions) error {
	if opts.Home == "" {
		return errors.New("home is required")
	}
	if opts.Port == 0 {
		opts.Port = config.DefaultPort
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(config.ProtectedDir(opts.Home), 0o700); err != nil {
		return err
	}

	lock, err := acquireLock(lockPath(opts.Home))
	if err != nil {
		return err
	}
	defer lock.release()

	startPprof(log, opts.PprofAddr)

	addr := fmt.Sprintf("127.0.0.1:%d", opts.Port)
	if err := checkPortAvailable(addr); err != nil {
		return err
	}

	ws, err := workspace.Open(workspace.OpenOptions{Home: opts.Home, BaseURL: opts.BaseURL, Logger: log})
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	if _, err := ws.Bootstrap(ctx); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return ErrNotLoggedIn
		}
		// Serve the cached snapshot; the poller keeps retrying.
		log.Warn("daemon: initial sync failed", "error", err)
	}

	srvOpts := httpapi.ServerOptions{
		Addr:      addr,
		Dev:       opts.Dev,
		APIKey:    opts.APIKey,
		Workspace: ws.Workspace,
		Logger:    log,
	}
	if opts.EnableOtel {
		metricsHandler, err := otel.InitMeterProvider(ctx, "taskboard")
		if err != nil {
			log.Warn("otel init failed, using plain metrics", "error", err)
		} else {
			srvOpts.MetricsHandler = metricsHandler
			srvOpts.UseOtelHTTP = true
			st := ws.State()
			if err := otel.InitMetricsWithProjectCount(ctx, func() int64 { return int64(len(st.Projects())) }); err != nil {
				log.Warn("otel metrics init failed", "error", err)
			}
		}
	}
	app, err := httpapi.NewApp(srvOpts)
	if err != nil {
		return err
	}

	if err := writeRuntimeFiles(opts.Home, addr); err != nil {
		return err
	}
	defer removeRuntimeFiles(opts.Home)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go app.Forward(runCtx)
	go (&poller.Poller{
		Name:     "notifications",
		Interval: opts.PollInterval,
		Logger:   log,
		Fetch: func(ctx context.Context) error {
			if err := ws.RefreshNotifications(ctx); err != nil {
				return err
			}
			return ws.SaveSnapshot(ctx)
		},
	}).Run(runCtx)

	log.Info("daemon starting", "addr", addr, "home", opts.Home, "api", ws.Client.BaseURL)
	errCh := make(chan error, 1)
	go func() { errCh <- app.Server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()
		_ = app.Server.Shutdown(shutdownCtx)
		if err := ws.SaveSnapshot(shutdownCtx); err != nil {
			log.Warn("daemon: save snapshot on shutdown", "error", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeRuntimeFiles(home, addr string) error {
	if err := os.WriteFile(pidPath(home), []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return err
	}
	return os.WriteFile(addrPath(home), []byte(addr+"\n"), 0o644)
}

func removeRuntimeFiles(home string) {
	_ = os.Remove(pidPath(home))
	_ = os.Remove(addrPath(home))
}

// StartBackground re-executes the current binary as `serve --foreground` detached
// from the terminal and returns its pid.
func StartBackground(ctx context.Context, opts StartOptions) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(config.ProtectedDir(opts.Home), 0o700); err != nil {
		return 0, err
	}
	if st, _ := Status(ctx, opts.Home); st.Running {
		return 0, fmt.Errorf("taskboard already running (pid %d)", st.PID)
	}

	logFile, err := os.OpenFile(LogPath(opts.Home), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, err
	}
	defer func() { _ = logFile.Close() }()

	cmd := exec.Command(exe, foregroundArgs(opts)...)
	cmd.Stdout = io.Discard
	cmd.Stderr = logFile
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	waitUntil(ctx, 2*time.Second, 50*time.Millisecond, func() bool {
		st, _ := Status(ctx, opts.Home)
		if st.Running {
			pid = st.PID
		}
		return st.Running
	})
	return pid, nil
}

// foregroundArgs is the command line the detached child runs with.
func foregroundArgs(opts StartOptions) []string {
	args := []string{"serve", "--foreground", "--home", opts.Home, "--port", strconv.Itoa(opts.Port)}
	if opts.BaseURL != "" {
		args = append(args, "--api-url", opts.BaseURL)
	}
	if opts.PollInterval > 0 {
		args = append(args, "--interval", opts.PollInterval.String())
	}
	if opts.Dev {
		args = append(args, "--dev")
	}
	// --otel defaults to true, so it is always spelled out.
	args = append(args, "--otel="+strconv.FormatBool(opts.EnableOtel))
	if opts.PprofAddr != "" {
		args = append(args, "--pprof", opts.PprofAddr)
	}
	return args
}

// waitUntil polls cond every interval until it holds, timeout elapses or ctx ends.
func waitUntil(ctx context.Context, timeout, interval time.Duration, cond func() bool) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		if cond() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return cond()
		case <-tick.C:
		}
	}
}

// Stop terminates a running daemon and reports whether one was running.
func Stop(ctx context.Context, home string) (bool, error) {
	st, err := Status(ctx, home)
	if err != nil {
		return false, err
	}
	if !st.Running {
		return false, nil
	}
	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return false, errNotRunning
	}
	if err := signalTerm(proc); err != nil {
		return false, err
	}

	exited := waitUntil(ctx, 15*time.Second, 100*time.Millisecond, func() bool {
		st, _ := Status(ctx, home)
		return !st.Running
	})
	if !exited {
		_ = proc.Kill()
	}
	return true, nil
}

// Status reads the pid file and checks that the process is alive. A stale pid
// file is removed.
func Status(_ context.Context, home string) (StatusInfo, error) {
	pid, ok := readPID(pidPath(home))
	if !ok {
		return StatusInfo{}, nil
	}
	if !processExists(pid) {
		_ = os.Remove(pidPath(home))
		return StatusInfo{}, nil
	}
	addr := "unknown"
	if ab, err := os.ReadFile(addrPath(home)); err == nil {
		if s := strings.TrimSpace(string(ab)); s != "" {
			addr = s
		}
	}
	return StatusInfo{Running: true, PID: pid, Addr: addr}, nil
}

// readPID parses a file holding a single positive pid.
func readPID(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%s is already in use", addr)
	}
	_ = ln.Close()
	return nil
}
