package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service path prefixes on the shared backend base URL.
const (
	AuthService    = "/auth-service"
	DevicesService = "/devices-manager-service"
)

// defaultTimeout is the per-request timeout when none is configured.
const defaultTimeout = 20 * time.Second

// maxErrorBodyBytes limits how much of an error response body is read for
// diagnostic messages.
const maxErrorBodyBytes = 2048

// TokenSource supplies the current session token for outbound requests.
// A false return means "unauthenticated" and the request is sent without
// an Authorization header.
type TokenSource interface {
	Token() (string, bool)
}

// Logger defines the logging interface used by the Client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Config contains client configuration options.
type Config struct {
	// BaseURL is the backend base URL, e.g. "http://192.168.1.10:8000".
	BaseURL string

	// Timeout is the per-request timeout. Zero means the default.
	Timeout time.Duration
}

// Client is the HTTP client for the remote security backend.
//
// All request methods are safe for concurrent use. The token source and
// unauthorized hook may be set once during wiring, before the first request.
type Client struct {
	baseURL *url.URL
	hc      *http.Client

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()
	logger         Logger
}

// New creates a backend client for the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend URL must be absolute: %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: u,
		hc:      &http.Client{Timeout: timeout},
		logger:  noopLogger{},
	}, nil
}

// SetTokenSource sets the session token source used for bearer injection.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// SetOnUnauthorized sets a hook invoked whenever the backend answers 401.
// The hook runs before the error is returned to the caller.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON issues a POST request with a JSON body and decodes the response into out.
// body and out may each be nil.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// PostQuery issues a POST request with query parameters and no body.
func (c *Client) PostQuery(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, query, nil, out)
}

// PutJSON issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE request. The response body, if any, is discarded.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// PostForm issues a POST request with a form-encoded body and decodes the
// JSON response into out. Used by the token endpoint, which is the one
// non-JSON request the backend expects.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(req, out)
}

// do builds and sends a JSON request.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// newRequest builds a request with bearer token and correlation headers.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.mu.RLock()
	tokens := c.tokens
	c.mu.RUnlock()

	if tokens != nil {
		if token, ok := tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// send executes the request and decodes a successful JSON response into out.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Nothing useful to do with a close error

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(req, resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Best effort drain
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s response: %v", ErrNetwork, req.Method, req.URL.Path, err)
	}
	return nil
}

// classify maps a non-2xx response onto the error taxonomy.
// A 401 on a protected call additionally fires the unauthorized hook:
// server rejection is authoritative over any local expiry state. A 401
// from the token endpoint is a rejected credential exchange and leaves
// any existing session alone.
func (c *Client) classify(req *http.Request, resp *http.Response) error {
	snippet := readSnippet(resp.Body)

	c.mu.RLock()
	onUnauthorized := c.onUnauthorized
	logger := c.logger
	c.mu.RUnlock()

	logger.Debug("backend request failed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if onUnauthorized != nil && !strings.HasSuffix(req.URL.Path, tokenPath) {
			onUnauthorized()
		}
		return fmt.Errorf("%w: %s %s: status 401", ErrAuthentication, req.Method, req.URL.Path)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s %s: status 403", ErrForbidden, req.Method, req.URL.Path)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s %s: status 404", ErrNotFound, req.Method, req.URL.Path)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrValidation, req.Method, req.URL.Path, resp.StatusCode, snippet)
	default:
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrNetwork, req.Method, req.URL.Path, resp.StatusCode, snippet)
	}
}

// readSnippet reads a bounded prefix of an error response body for messages.
func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return ""
	}
	return strings.TrimSpace(string(data))
}
