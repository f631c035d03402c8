/*
Package ttlcache memoizes the result of a remote fetch for a bounded time.

Each key holds one (data, timestamp) slot. A read inside the TTL returns the stored data without
calling the fetcher; otherwise the fetcher runs and its result replaces the slot. Fetch failures
are never cached and leave any stale slot in place.
*/
package ttlcache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher loads a fresh value for a cache miss.
type Fetcher[T any] func(ctx context.Context) (T, error)

// entry is a single cached slot.
type entry[T any] struct {
	data      T
	timestamp time.Time
}

// Cache is a keyed, time-boxed cache safe for concurrent use.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]

	// gen is bumped by Clear; a fetch started under an older generation is not stored.
	gen uint64

	// group collapses concurrent misses on the same key into one fetch.
	group singleflight.Group

	now func() time.Time
}

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// New creates an empty cache.
func New[T any](opts ...Option) *Cache[T] {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}

	return &Cache[T]{
		entries: make(map[string]entry[T]),
		now:     s.now,
	}
}

// GetOrFetch returns the cached value for key when it is younger than ttl; otherwise it calls
// fetch, stores the result stamped with the current time, and returns it.
// A fetch error is returned as is and the previous slot, if any, is kept.
//
// Concurrent misses share one fetch. The shared fetch does not inherit any caller's
// cancellation; each caller stops waiting when its own ctx is done.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch Fetcher[T]) (T, error) {
	var zero T

	if data, ok := c.fresh(key, ttl); ok {
		return data, nil
	}

	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	// Flights are scoped to a generation so a miss after Clear never joins an older fetch.
	flight := strconv.FormatUint(gen, 10) + "/" + key
	fetchCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(flight, func() (any, error) {
		// another caller may have refreshed the slot while this one waited
		if data, ok := c.fresh(key, ttl); ok {
			return data, nil
		}

		data, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = entry[T]{data: data, timestamp: c.now()}
		}
		c.mu.Unlock()

		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Peek returns the stored value for key regardless of age.
func (c *Cache[T]) Peek(key string) (T, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e.data, e.timestamp, ok
}

// Clear removes every entry. Fetches already in flight do not store their result.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.gen++
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *Cache[T]) fresh(key string, ttl time.Duration) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.timestamp) >= ttl {
		var zero T
		return zero, false
	}
	return e.data, true
}
