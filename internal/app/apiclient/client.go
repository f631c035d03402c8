/*
Package apiclient is a typed HTTP client for the tutorial REST API.

It is the Go counterpart of the browser-side examples: plain calls for every verb, sequential
and parallel request patterns, a retried listing and a cached listing.
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"apitutor/internal/app/user"
	"apitutor/internal/pkg/logx"
	"apitutor/internal/pkg/retry"
	"apitutor/internal/pkg/ttlcache"
)

const (
	// DefaultTimeout bounds every HTTP call made by the client.
	DefaultTimeout = 5 * time.Second

	// DefaultCacheTTL is how long CachedUsers serves a listing before refetching.
	DefaultCacheTTL = 5 * time.Minute

	usersCacheKey = "all-users"
)

// APIError is returned when the server answers with a failure envelope or a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	policy   retry.Policy
	cacheTTL time.Duration
	now      func() time.Time

	users *ttlcache.Cache[[]user.User]

	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (which has DefaultTimeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryPolicy sets the policy used by ListUsersWithRetry.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithCacheTTL sets the lifetime of the CachedUsers entry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithClock sets the clock used by the listing cache.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:4000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		policy:   retry.DefaultPolicy(),
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
		logger:   logx.Component("apiclient"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.users = ttlcache.New[[]user.User](ttlcache.WithClock(c.now))

	return c
}

// envelope is the response wrapper written by every API route.
type envelope[T any] struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
	Timestamp  string `json:"timestamp"`
}

// call performs one request and unwraps the envelope's data.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("Request failed")
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Response received")

	var env envelope[T]
	decodeErr := json.NewDecoder(res.Body).Decode(&env)

	if res.StatusCode < 200 || res.StatusCode > 299 || (decodeErr == nil && !env.Success) {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return zero, &APIError{StatusCode: res.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return zero, fmt.Errorf("decode %s %s response: %w", method, path, decodeErr)
	}

	return env.Data, nil
}
