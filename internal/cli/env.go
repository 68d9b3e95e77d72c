package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/GITHIYON49/taskmanagementapp/internal/config"
	"github.com/GITHIYON49/taskmanagementapp/internal/session"
	"github.com/GITHIYON49/taskmanagementapp/internal/workspace"
	"github.com/spf13/cobra"
)

type env struct {
	home string
	cfg  *config.Config
	log  *slog.Logger
}

type envKey struct{}

func withEnv(ctx context.Context, e *env) context.Context {
	return context.WithValue(ctx, envKey{}, e)
}

func envFrom(cmd *cobra.Command) *env {
	if e, ok := cmd.Context().Value(envKey{}).(*env); ok {
		return e
	}
	panic("cli env missing from context")
}

// openWorkspace opens the local database and a client for the configured backend.
func openWorkspace(cmd *cobra.Command) (*workspace.Handle, error) {
	e := envFrom(cmd)
	return workspace.Open(workspace.OpenOptions{Home: e.home, BaseURL: e.cfg.BaseURL(), Logger: e.log})
}

// withWorkspace runs fn against an opened workspace and prints the success notices
// it produced.
func withWorkspace(cmd *cobra.Command, fn func(ws *workspace.Handle) error) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()
	err = fn(ws)
	printNotices(cmd.OutOrStdout(), ws.Workspace)
	return userError(err)
}

// withSession is withWorkspace for commands that need a signed-in user. It restores
// the stored session and syncs projects first.
func withSession(cmd *cobra.Command, fn func(ws *workspace.Handle) error) error {
	return withWorkspace(cmd, func(ws *workspace.Handle) error {
		if _, err := ws.Bootstrap(cmd.Context()); err != nil {
			if errors.Is(err, session.ErrNotAuthenticated) {
				return errors.New("not logged in; run `taskboard login`")
			}
			return err
		}
		return fn(ws)
	})
}

func printNotices(out io.Writer, ws *workspace.Workspace) {
	for {
		select {
		case n := <-ws.Notices():
			if n.Level == workspace.LevelSuccess {
				_, _ = fmt.Fprintln(out, n.Message)
			}
		default:
			return
		}
	}
}

// userError reduces a workspace error to its user-facing message.
func userError(err error) error {
	var we *workspace.Error
	if errors.As(err, &we) {
		return errors.New(we.Message)
	}
	return err
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
