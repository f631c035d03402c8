package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"apitutor/internal/app/user"
	"apitutor/internal/pkg/retry"
)

// maxParallelFetches bounds the goroutines started by FetchUsers.
const maxParallelFetches = 4

// Health is the data of the /health response.
type Health struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Users       int    `json:"users"`
	Connections int    `json:"connections"`
}

// SearchQuery echoes the parameters the server applied to a search.
type SearchQuery struct {
	Keyword string `json:"keyword"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
}

// SearchResult is one page of search matches. Total counts matches across all pages.
type SearchResult struct {
	Query   SearchQuery `json:"query"`
	Results []user.User `json:"results"`
	Count   int         `json:"count"`
	Total   int         `json:"total"`
}

type userInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	return call[Health](ctx, c, http.MethodGet, "/health", nil)
}

// ListUsers calls GET /api/users.
func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	return call[[]user.User](ctx, c, http.MethodGet, "/api/users", nil)
}

// GetUser calls GET /api/users/{id}.
func (c *Client) GetUser(ctx context.Context, id int) (user.User, error) {
	return call[user.User](ctx, c, http.MethodGet, userPath(id), nil)
}

// SearchUsers calls GET /api/search. Zero page or limit lets the server apply its default.
func (c *Client) SearchUsers(ctx context.Context, keyword string, page, limit int) (SearchResult, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return call[SearchResult](ctx, c, http.MethodGet, "/api/search?"+q.Encode(), nil)
}

// CreateUser calls POST /api/users.
func (c *Client) CreateUser(ctx context.Context, name, email string) (user.User, error) {
	u, err := call[user.User](ctx, c, http.MethodPost, "/api/users", userInput{Name: name, Email: email})
	if err == nil {
		c.ClearCache()
	}
	return u, err
}

// ReplaceUser calls PUT /api/users/{id}.
func (c *Client) ReplaceUser(ctx context.Context, id int, name, email string) (user.User, error) {
	u, err := call[user.User](ctx, c, http.MethodPut, userPath(id), userInput{Name: name, Email: email})
	if err == nil {
		c.ClearCache()
	}
	return u, err
}

// PatchUser calls PATCH /api/users/{id} with only the non-nil fields of p.
func (c *Client) PatchUser(ctx context.Context, id int, p user.Patch) (user.User, error) {
	u, err := call[user.User](ctx, c, http.MethodPatch, userPath(id), p)
	if err == nil {
		c.ClearCache()
	}
	return u, err
}

// DeleteUser calls DELETE /api/users/{id} and returns the removed record.
func (c *Client) DeleteUser(ctx context.Context, id int) (user.User, error) {
	u, err := call[user.User](ctx, c, http.MethodDelete, userPath(id), nil)
	if err == nil {
		c.ClearCache()
	}
	return u, err
}

// CreateAndFetchUser creates a user and then reads it back. The two calls are independent, so a
// concurrent delete in between surfaces as a not-found APIError.
func (c *Client) CreateAndFetchUser(ctx context.Context, name, email string) (user.User, error) {
	created, err := c.CreateUser(ctx, name, email)
	if err != nil {
		return user.User{}, err
	}
	return c.GetUser(ctx, created.ID)
}

// FetchUsers gets several users in parallel. Results keep the order of ids; the first failure
// cancels the remaining calls and is returned.
func (c *Client) FetchUsers(ctx context.Context, ids []int) ([]user.User, error) {
	out := make([]user.User, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			u, err := c.GetUser(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch user %d: %w", id, err)
			}
			out[i] = u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsersWithRetry lists users under the client's retry policy. Client errors (4xx other than
// 429) are not retried.
func (c *Client) ListUsersWithRetry(ctx context.Context) ([]user.User, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) ([]user.User, error) {
		users, err := c.ListUsers(ctx)
		if err != nil && !retryable(err) {
			return nil, retry.Permanent(err)
		}
		return users, err
	})
}

// CachedUsers serves the user listing from the cache while it is younger than the cache TTL.
func (c *Client) CachedUsers(ctx context.Context) ([]user.User, error) {
	return c.users.GetOrFetch(ctx, usersCacheKey, c.cacheTTL, c.ListUsers)
}

// ClearCache drops the cached listing.
func (c *Client) ClearCache() {
	c.users.Clear()
}

func userPath(id int) string {
	return "/api/users/" + strconv.Itoa(id)
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}
