// Package client calls the job tracker HTTP API on behalf of the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/extract"
	"github.com/jonathan/job-tracker/internal/types"
)

// DefaultTimeout bounds a single request attempt.
const DefaultTimeout = 30 * time.Second

// HTTPError is a non-2xx response. Message is the server's "error" field
// when present.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
}

// Client is a typed API client. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
	verbose    bool
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the x-api-key used by the extension routes.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithToken sets the bearer token used by the jobs routes.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the attempt count and base delay for transient failures.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.delay = delay
	}
}

// WithVerbose logs retries.
func WithVerbose(verbose bool) Option {
	return func(c *Client) { c.verbose = verbose }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		attempts:   3,
		delay:      500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupContact asks whether a contact exists for a LinkedIn profile.
func (c *Client) LookupContact(ctx context.Context, linkedInURL string) (*types.LookupContactResponse, error) {
	var resp types.LookupContactResponse
	body := types.LookupContactRequest{LinkedInURL: linkedInURL}
	if err := c.do(ctx, http.MethodPost, "/api/extension/lookup-contact", body, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncConnections merges names into the stored contact for a profile. A
// missing contact is an *HTTPError with status 404.
func (c *Client) SyncConnections(ctx context.Context, linkedInURL string, names []string) (*types.SyncConnectionsResponse, error) {
	if names == nil {
		names = []string{}
	}
	body := struct {
		LinkedInURL       string   `json:"linkedin_url"`
		MutualConnections []string `json:"mutual_connections"`
	}{linkedInURL, names}

	var resp types.SyncConnectionsResponse
	if err := c.do(ctx, http.MethodPost, "/api/extension/sync-connections", body, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateJob saves an extracted job record. Creation is not idempotent, so
// only rate-limit rejections are retried.
func (c *Client) CreateJob(ctx context.Context, record *extract.JobRecord) (*db.Job, error) {
	var resp struct {
		Success bool    `json:"success"`
		Job     *db.Job `json:"job"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/extension/jobs", record, &resp, false); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

// ListJobs returns the caller's most recent jobs.
func (c *Client) ListJobs(ctx context.Context, limit int) ([]db.Job, error) {
	var resp struct {
		Jobs []db.Job `json:"jobs"`
	}
	path := "/api/extension/jobs"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// do sends one request with retries and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any, idempotent bool) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}
	url := c.baseURL + path

	retryable := isRetryableError
	if !idempotent {
		retryable = isRateLimited
	}

	data, err := retry.DoWithData(
		func() ([]byte, error) {
			return c.send(ctx, method, url, payload)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxJitter(c.delay/2),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			if c.verbose {
				log.Printf("[client] retrying %s %s (attempt %d): %v", method, path, n+1, err)
			}
		}),
	)
	if err != nil {
		return unwrapRetry(err)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: url}
		var failure struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &failure) == nil {
			httpErr.Message = failure.Error
			if resp.StatusCode == http.StatusTooManyRequests && failure.Message != "" {
				httpErr.Message = failure.Message
			}
		}
		return nil, httpErr
	}
	return data, nil
}

// isRetryableError reports whether err is transient: network failures, 429
// and gateway or server errors.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

func isRateLimited(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}

// unwrapRetry returns the *HTTPError inside a retry error list so callers
// can inspect the final status.
func unwrapRetry(err error) error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return err
}
