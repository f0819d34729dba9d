// Package querycache is the process-wide cache of content API query results.
// Keys are ordered segments such as ["replies", thread, cursor]; invalidating
// a prefix drops every key that starts with it.
package querycache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Key []string

func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

// HasPrefix reports whether the first segments of k equal prefix
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
}

type Cache struct {
	mu        sync.Mutex
	entries   map[string]entry
	epoch     uint64
	staleTime time.Duration
	group     singleflight.Group
	now       func() time.Time
}

// New creates a cache whose entries are served for staleTime before being refetched
func New(staleTime time.Duration) *Cache {
	return &Cache{
		entries:   make(map[string]entry),
		staleTime: staleTime,
		now:       time.Now,
	}
}

// Get returns a fresh cached value
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok || c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.String()] = entry{key: key, value: value, fetchedAt: c.now()}
}

// Do returns the fresh cached value for key or runs fetch. Concurrent callers
// for the same key share a single fetch, but only within one invalidation
// epoch: a caller arriving after Invalidate never joins a fetch started
// before it. Errors are never cached, and a result that raced with an
// invalidation is returned but not stored.
func (c *Cache) Do(ctx context.Context, key Key, fetch func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	k := key.String()
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	flight := k + "\x1e" + strconv.FormatUint(epoch, 10)
	v, err, _ := c.group.Do(flight, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.epoch == epoch {
			c.entries[k] = entry{key: key, value: v, fetchedAt: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}

// Invalidate drops every entry under prefix and returns how many were removed
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	n := 0
	for k, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fetch is the typed form of Do
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Do(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}
