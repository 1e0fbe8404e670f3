package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/application/dashboard"
)

const defaultStatsKey = "cshub:dashboard:stats"

// RedisStatsCache implements dashboard.StatsCache using Redis.
// Instances share one key, so an invalidation on any node is seen by all.
type RedisStatsCache struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStatsCache creates a cache on an existing client. The caller owns the client.
func NewRedisStatsCache(client *redis.Client, logger *zap.Logger) *RedisStatsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatsCache{client: client, key: defaultStatsKey, logger: logger}
}

// Get retrieves the cached snapshot
func (c *RedisStatsCache) Get(ctx context.Context) (*dashboard.Stats, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss for dashboard stats")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats from cache: %w", err)
	}

	var stats dashboard.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		// corrupted entry
		_ = c.client.Del(ctx, c.key)
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return &stats, nil
}

// Set stores the snapshot with a TTL
func (c *RedisStatsCache) Set(ctx context.Context, stats *dashboard.Stats, ttl time.Duration) error {
	if stats == nil {
		return nil
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set stats in cache: %w", err)
	}
	c.logger.Debug("Cached dashboard stats", zap.Duration("ttl", ttl))
	return nil
}

// Invalidate removes the snapshot
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to delete stats from cache: %w", err)
	}
	return nil
}
