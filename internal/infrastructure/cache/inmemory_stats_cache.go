package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cshub/backend/internal/application/dashboard"
)

// InMemoryStatsCache implements dashboard.StatsCache in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryStatsCache struct {
	mu        sync.RWMutex
	stats     *dashboard.Stats
	expiresAt time.Time
	now       func() time.Time
}

// NewInMemoryStatsCache creates an empty cache
func NewInMemoryStatsCache() *InMemoryStatsCache {
	return &InMemoryStatsCache{now: time.Now}
}

// Get returns the snapshot unless it expired
func (c *InMemoryStatsCache) Get(_ context.Context) (*dashboard.Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stats == nil || !c.now().Before(c.expiresAt) {
		return nil, nil
	}
	copied := *c.stats
	return &copied, nil
}

// Set stores a copy of the snapshot
func (c *InMemoryStatsCache) Set(_ context.Context, stats *dashboard.Stats, ttl time.Duration) error {
	if stats == nil {
		return nil
	}
	copied := *stats

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = &copied
	c.expiresAt = c.now().Add(ttl)
	return nil
}

// Invalidate drops the snapshot
func (c *InMemoryStatsCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	return nil
}
