package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
)

// User-facing messages for transport failures.
const (
	MsgNetwork        = "Cannot connect to server. Please check your connection."
	MsgTimeout        = "Request timeout. Please try again."
	MsgSessionExpired = "Session expired. Please log in again."
)

// ErrValidation marks input rejected before any request was sent.
var ErrValidation = errors.New("invalid input")

// Level classifies a Notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a user-facing message about a finished call.
type Notice struct {
	Level   Level     `json:"level"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Error is returned by every failing workspace call. Message is safe to show a user.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func invalid(op, msg string) error {
	return &Error{Op: op, Message: msg, Err: ErrValidation}
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var we *Error
	if errors.As(err, &we) {
		return we.Message
	}
	return err.Error()
}

// fail maps err to a user-facing message, tears the session down on 401, emits a
// Notice and returns the wrapped error.
func (w *Workspace) fail(ctx context.Context, op string, err error, fallback string) error {
	msg := fallback
	var apiErr *client.APIError
	switch {
	case errors.Is(err, ErrValidation):
		msg = Message(err)
	case errors.Is(err, client.ErrTimeout):
		msg = MsgTimeout
	case errors.Is(err, client.ErrNetwork):
		msg = MsgNetwork
	case errors.Is(err, client.ErrTooLarge):
		msg = "File size should be less than 5MB"
	case client.IsUnauthorized(err) && op != "login":
		msg = MsgSessionExpired
		w.teardown(ctx)
	case errors.As(err, &apiErr) && apiErr.Message != "":
		msg = apiErr.Message
	}
	w.log.Error("workspace: "+op+" failed", "error", err)
	w.notify(LevelError, op, msg)
	if errors.Is(err, ErrValidation) {
		return err
	}
	return &Error{Op: op, Message: msg, Err: err}
}

// teardown forgets the persisted token and the signed-in user.
func (w *Workspace) teardown(ctx context.Context) {
	if w.sess != nil {
		if err := w.sess.Clear(ctx); err != nil {
			w.log.Warn("workspace: clear session", "error", err)
		}
	}
	w.st.ClearUser()
}
