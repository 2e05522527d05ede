// Package cache memoizes the fetched dataset for a bounded time window.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/treemap/internal/model"
)

// Loader produces a fresh Dataset, typically by fetching and normalizing the
// remote feed.
type Loader func(ctx context.Context) (*model.Dataset, error)

// Cache holds one Dataset and serves it until the TTL elapses. Expiry
// replaces the value wholesale; readers never observe a partial update.
// Loader failures are not cached, so the next call retries.
type Cache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
	load      Loader
	group     singleflight.Group
	current   *model.Dataset
	fetchedAt time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides the time source. Used by tests to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache with the given TTL and loader.
func New(ttl time.Duration, load Loader, opts ...Option) *Cache {
	c := &Cache{
		ttl:  ttl,
		now:  time.Now,
		load: load,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached Dataset, refreshing it when the window has elapsed.
// Concurrent calls during a refresh share a single load.
func (c *Cache) Get(ctx context.Context) (*model.Dataset, error) {
	if ds, ok := c.fresh(); ok {
		return ds, nil
	}

	v, err, _ := c.group.Do("dataset", func() (any, error) {
		// Another caller may have refreshed while we waited on the flight.
		if ds, ok := c.fresh(); ok {
			return ds, nil
		}

		ds, err := c.load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.current = ds
		c.fetchedAt = c.now()
		c.mu.Unlock()

		zap.L().Info("dataset cache refreshed",
			zap.Int("records", len(ds.Records)),
			zap.Int("dropped", ds.Dropped),
		)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Dataset), nil
}

func (c *Cache) fresh() (*model.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, false
	}
	if c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.current, true
}
