package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps failures to reach the backend at all.
	ErrNetwork = errors.New("cannot connect to server")
	// ErrTimeout wraps requests that exceeded their deadline.
	ErrTimeout = errors.New("request timeout")
	// ErrTooLarge is returned before uploading a file over the endpoint's size limit.
	ErrTooLarge = errors.New("file size should be less than 5MB")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // server "message" or "error" field, may be empty
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("api %s %s: status %d", e.Method, e.Path, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// wrapped ties a transport failure to one of the sentinel kinds.
type wrapped struct {
	kind error
	op   string
	err  error
}

func (w *wrapped) Error() string { return fmt.Sprintf("%s: %v: %v", w.op, w.kind, w.err) }

func (w *wrapped) Unwrap() []error { return []error{w.kind, w.err} }
