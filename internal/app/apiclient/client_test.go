package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitutor/internal/app/realtime"
	"apitutor/internal/app/user"
	"apitutor/internal/configs"
	"apitutor/internal/handler"
	"apitutor/internal/pkg/resp"
	"apitutor/internal/pkg/retry"
)

func newServer(t *testing.T, seed ...user.User) *httptest.Server {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:    "test",
		Port:           4000,
		AllowedOrigins: []string{},
		WriteRate:      1000,
		WriteBurst:     1000,
		WSConnectRate:  1000,
		WSConnectBurst: 1000,
	}
	hub := realtime.NewHub()
	t.Cleanup(hub.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(handler.Router(handler.NewAppDeps(ctx, cfg, user.NewStore(seed...), hub)))
	t.Cleanup(srv.Close)
	t.Cleanup(cancel)
	return srv
}

func strPtr(s string) *string { return &s }

func TestClient_CRUD(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL)

	created, err := c.CreateUser(ctx, "A", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.User{ID: 1, Name: "A", Email: "a@x.com"}, created)

	got, err := c.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	patched, err := c.PatchUser(ctx, 1, user.Patch{Name: strPtr("B")})
	require.NoError(t, err)
	assert.Equal(t, user.User{ID: 1, Name: "B", Email: "a@x.com"}, patched)

	replaced, err := c.ReplaceUser(ctx, 1, "C", "c@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.User{ID: 1, Name: "C", Email: "c@x.com"}, replaced)

	removed, err := c.DeleteUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, replaced, removed)

	_, err = c.GetUser(ctx, 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Message)
}

func TestClient_ValidationErrorsSurface(t *testing.T) {
	c := New(newServer(t).URL)

	_, err := c.CreateUser(context.Background(), "A", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	_, err = c.SearchUsers(context.Background(), "", 0, 0)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_HealthAndSearch(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t, user.DemoUsers()...).URL)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 3, h.Users)

	res, err := c.SearchUsers(ctx, "n", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, SearchQuery{Keyword: "n", Page: 1, Limit: 2}, res.Query)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 3, res.Total)
}

func TestClient_CreateAndFetchUser(t *testing.T) {
	c := New(newServer(t, user.DemoUsers()...).URL)

	u, err := c.CreateAndFetchUser(context.Background(), "Kim", "kim@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.User{ID: 4, Name: "Kim", Email: "kim@x.com"}, u)
}

func TestClient_FetchUsersKeepsOrder(t *testing.T) {
	c := New(newServer(t, user.DemoUsers()...).URL)

	users, err := c.FetchUsers(context.Background(), []int{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{users[0].ID, users[1].ID, users[2].ID})

	_, err = c.FetchUsers(context.Background(), []int{1, 99})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

// flakyServer answers status for the first failures calls, then a one-user listing.
func flakyServer(t *testing.T, failures int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failures {
			resp.RespondEnvelope(w, r, status, false, nil, "not now")
			return
		}
		resp.RespondSuccess(w, r, http.StatusOK, []user.User{{ID: 1, Name: "A", Email: "a@x.com"}}, "ok")
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_ListUsersWithRetry(t *testing.T) {
	fast := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	t.Run("recovers after transient failures", func(t *testing.T) {
		srv, calls := flakyServer(t, 2, http.StatusServiceUnavailable)
		c := New(srv.URL, WithRetryPolicy(fast))

		users, err := c.ListUsersWithRetry(context.Background())
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		srv, calls := flakyServer(t, 10, http.StatusInternalServerError)
		c := New(srv.URL, WithRetryPolicy(fast))

		_, err := c.ListUsersWithRetry(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		srv, calls := flakyServer(t, 10, http.StatusBadRequest)
		c := New(srv.URL, WithRetryPolicy(fast))

		_, err := c.ListUsersWithRetry(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestClient_CachedUsers(t *testing.T) {
	var mu sync.Mutex
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	advance := func(d time.Duration) {
		mu.Lock()
		clock = clock.Add(d)
		mu.Unlock()
	}

	srv, calls := flakyServer(t, 0, http.StatusOK)
	c := New(srv.URL, WithClock(now), WithCacheTTL(time.Minute))
	ctx := context.Background()

	_, err := c.CachedUsers(ctx)
	require.NoError(t, err)
	advance(30 * time.Second)
	_, err = c.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second call within the TTL is served from cache")

	advance(31 * time.Second)
	_, err = c.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	c.ClearCache()
	_, err = c.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_MutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL)

	users, err := c.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = c.CreateUser(ctx, "A", "a@x.com")
	require.NoError(t, err)

	users, err = c.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithRetryPolicy(retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}))
	_, err := c.ListUsersWithRetry(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
