// Package client provides a Go SDK for the project management REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// TokenSource returns the bearer token to send, or "" for anonymous requests.
type TokenSource func() string

// StaticToken returns a TokenSource that always yields tok.
func StaticToken(tok string) TokenSource {
	return func() string { return tok }
}

// Client calls the backend API. It is safe for concurrent use.
type Client struct {
	BaseURL    string       // e.g. "http://localhost:5000/api"
	Token      TokenSource  // optional; nil sends no Authorization header
	HTTPClient *http.Client // optional; nil uses a client with the default 30s timeout

	// OnUnauthorized runs before a 401 is returned to the caller.
	OnUnauthorized func()
	// OnResponse observes every completed call. status is 0 on transport failure.
	OnResponse func(method, path string, status int, d time.Duration)
}

var defaultHTTPClient = &http.Client{Timeout: models.DefaultRequestTimeoutSec * time.Second}

// New returns a client for baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, token TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token}
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return defaultHTTPClient
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != nil {
		if tok := c.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// send performs req and decodes a 2xx JSON body into out. Errors are *APIError,
// or wrap ErrTimeout / ErrNetwork.
func (c *Client) send(req *http.Request, path string, out any) error {
	start := time.Now()
	resp, err := c.client().Do(req)
	if err != nil {
		c.observe(req.Method, path, 0, time.Since(start))
		return transportError(req.Method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(req.Method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: req.Method, Path: path, Status: resp.StatusCode}
		var errBody struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(b, &errBody) == nil {
			apiErr.Message = errBody.Message
			if apiErr.Message == "" {
				apiErr.Message = errBody.Error
			}
		}
		if resp.StatusCode == http.StatusUnauthorized && c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return apiErr
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, r, contentType)
	if err != nil {
		return err
	}
	return c.send(req, path, out)
}

func (c *Client) observe(method, path string, status int, d time.Duration) {
	if c.OnResponse != nil {
		c.OnResponse(method, path, status, d)
	}
}

func transportError(method, path string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &wrapped{kind: ErrTimeout, op: method + " " + path, err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &wrapped{kind: ErrNetwork, op: method + " " + path, err: err}
}
