package cache

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// MemoryRouteCache is an unbounded in-process cache for one planning session.
// Trips hold tens of stops, so growth stays small. Safe for concurrent use.
type MemoryRouteCache struct {
	mu      sync.RWMutex
	entries map[domain.RouteKey]domain.TravelEstimate

	hits   atomic.Int64
	misses atomic.Int64
}

func NewMemoryRouteCache() *MemoryRouteCache {
	return &MemoryRouteCache{entries: make(map[domain.RouteKey]domain.TravelEstimate)}
}

func (c *MemoryRouteCache) Get(_ context.Context, key domain.RouteKey) (domain.TravelEstimate, bool, error) {
	c.mu.RLock()
	est, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return est, ok, nil
}

func (c *MemoryRouteCache) Put(_ context.Context, key domain.RouteKey, est domain.TravelEstimate) error {
	c.mu.Lock()
	c.entries[key] = est
	c.mu.Unlock()
	return nil
}

func (c *MemoryRouteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the number of hits and misses served so far.
func (c *MemoryRouteCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
