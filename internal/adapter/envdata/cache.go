package envdata

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
	"github.com/couchcryptid/storm-claims-analysis/internal/observability"
)

// CachedProvider wraps a provider with an in-memory LRU cache. Coordinates are
// rounded to four decimal places (about 11 m) for the cache key.
type CachedProvider struct {
	inner   domain.EnvironmentProvider
	metrics *observability.Metrics

	mu      sync.Mutex
	max     int
	order   *list.List // front is most recently used
	entries map[string]*list.Element
}

type cacheEntry struct {
	key  string
	snap domain.EnvironmentSnapshot
}

// NewCachedProvider creates a cache decorator holding at most maxEntries snapshots.
func NewCachedProvider(inner domain.EnvironmentProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		metrics: metrics,
		max:     maxEntries,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Snapshot returns a cached snapshot or fetches and caches a fresh one. Errors
// are never cached.
func (c *CachedProvider) Snapshot(ctx context.Context, lat, lon float64) (domain.EnvironmentSnapshot, error) {
	key := cacheKey(lat, lon)
	if snap, ok := c.get(key); ok {
		c.metrics.EnvironmentCache.WithLabelValues("hit").Inc()
		return snap, nil
	}
	c.metrics.EnvironmentCache.WithLabelValues("miss").Inc()

	snap, err := c.inner.Snapshot(ctx, lat, lon)
	if err != nil {
		return snap, err
	}
	c.put(key, snap)
	return snap, nil
}

// Len reports the number of cached snapshots.
func (c *CachedProvider) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *CachedProvider) get(key string) (domain.EnvironmentSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.EnvironmentSnapshot{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).snap, true
}

func (c *CachedProvider) put(key string, snap domain.EnvironmentSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).snap = snap
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, snap: snap})

	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}
