// Package backend is the HTTP client for the college-management REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/campus-portal/internal/logging"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
	Path    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("backend: %s returned %d", e.Path, e.Status)
	}
	return fmt.Sprintf("backend: %s returned %d: %s", e.Path, e.Status, e.Message)
}

// RejectionMessage returns the user-facing reason sent by the backend.
func (e *APIError) RejectionMessage() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource supplies the bearer token for authenticated calls.
func WithTokenSource(source func() string) Option {
	return func(c *Client) { c.token = source }
}

// WithUnauthorizedHook is called when an authenticated call answers 401.
func WithUnauthorizedHook(hook func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// WithLogger sets the client's base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks JSON to the backend.
type Client struct {
	base           *url.URL
	http           *http.Client
	token          func() string
	onUnauthorized func(ctx context.Context)
	logger         *slog.Logger
}

// New constructs a Client for the backend rooted at baseURL. No timeout is
// applied unless the caller supplies an HTTP client with one.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend: base url %q must be http or https", baseURL)
	}
	c := &Client{
		base:   parsed,
		http:   &http.Client{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type request struct {
	method string
	path   string
	body   any
	// bearer overrides the token source; authenticated marks the call as
	// requiring a session.
	bearer        string
	authenticated bool
}

func (c *Client) do(ctx context.Context, req request, out any) (err error) {
	if c == nil {
		return fmt.Errorf("backend client is nil")
	}
	logger := logging.FromContext(ctx, c.logger).With("component", "backend", "method", req.method, "path", req.path)
	started := time.Now()
	status := 0
	defer func() {
		attrs := []any{"status", status, "duration", time.Since(started)}
		if err != nil {
			logger.WarnContext(ctx, "backend call failed", append(attrs, "error", err)...)
			return
		}
		logger.DebugContext(ctx, "backend call completed", attrs...)
	}()

	var body io.Reader
	if req.body != nil {
		encoded, encErr := json.Marshal(req.body)
		if encErr != nil {
			return fmt.Errorf("backend: encode %s body: %w", req.path, encErr)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.base.String()+req.path, body)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	token := req.bearer
	if token == "" && req.authenticated && c.token != nil {
		token = c.token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("backend: read %s response: %w", req.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Path: req.path, Message: errorMessage(payload)}
		if resp.StatusCode == http.StatusUnauthorized && req.authenticated && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", req.path, err)
	}
	return nil
}

func errorMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func studentPath(prefix, studentID string) string {
	return prefix + url.PathEscape(studentID)
}
