// Package httpx provides the retry-wrapped HTTP client shared by every
// external provider call. It absorbs transient provider flakiness with
// exponential backoff; nothing above this layer retries.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Static errors for httpx operations.
var (
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("httpx: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("httpx: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-retryable status code.
	ErrRequestFailed = errors.New("httpx: request failed")
)

// RetriesExhaustedError is returned after every retry attempt failed.
// It carries the human-readable operation label and the last observed
// failure so the job record can tell which call gave up.
type RetriesExhaustedError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d attempts exhausted: %v", e.Op, e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Last
}

// Request describes one outbound JSON call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any // marshalled to JSON when non-nil
}

// Client performs outbound HTTP calls with bounded exponential-backoff
// retry. Transport failures, 5xx and 429 responses are retried; other
// non-2xx responses fail fast since a repeat would not change the
// outcome.
type Client struct {
	httpClient  *http.Client
	maxAttempts int
	baseBackoff time.Duration
	logger      *slog.Logger
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithMaxAttempts sets the total number of attempts per call (minimum 1).
func WithMaxAttempts(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxAttempts = n
		}
	}
}

// WithBaseBackoff sets the delay before the first retry. The delay
// doubles after each failed attempt.
func WithBaseBackoff(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.baseBackoff = d
		}
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a retrying client with the shared defaults:
// 3 attempts, 500ms initial backoff, 30s per-call timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxAttempts: 3,
		baseBackoff: 500 * time.Millisecond,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxAttempts returns the configured attempt budget.
func (c *Client) MaxAttempts() int {
	return c.maxAttempts
}

// DoJSON performs the request with retry, decoding the response body
// into result when result is non-nil. The op label names the call in
// logs and in the terminal error.
func (c *Client) DoJSON(ctx context.Context, op string, req Request, result any) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context cancelled: %w", op, ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		err := c.DoJSONOnce(ctx, op, req, result)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		lastErr = err
		c.logger.Warn("retryable call failed",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}

	return &RetriesExhaustedError{Op: op, Attempts: c.maxAttempts, Last: lastErr}
}

// DoJSONOnce performs a single attempt with no backoff. Used by the
// render poll loop, where a dropped poll waits for the next interval
// instead of burning the retry budget.
func (c *Client) DoJSONOnce(ctx context.Context, op string, req Request, result any) error {
	var bodyReader io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &retryableError{err: fmt.Errorf("%s: %w", op, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("%s: read response: %w", op, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return &retryableError{err: fmt.Errorf("%s: %w %d: %s", op, ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: fmt.Errorf("%s: %w: %s", op, ErrRateLimited, string(respBody))}
		}
		return fmt.Errorf("%s: %w with status %d: %s", op, ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%s: unmarshal response: %w", op, err)
		}
	}

	return nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
