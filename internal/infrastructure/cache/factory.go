package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/application/dashboard"
	"github.com/cshub/backend/internal/infrastructure/config"
)

// NewStatsCache picks the Redis cache when enabled and reachable, and
// falls back to memory otherwise. The returned client is nil for the
// in-memory cache; the caller closes it on shutdown.
func NewStatsCache(cfg config.RedisConfig, logger *zap.Logger) (dashboard.StatsCache, *redis.Client) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory dashboard cache")
		return NewInMemoryStatsCache(), nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory dashboard cache. "+
			"Stats may be stale on other instances until their TTL expires.",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryStatsCache(), nil
	}

	logger.Info("Using Redis dashboard cache", zap.String("addr", cfg.Addr()))
	return NewRedisStatsCache(client, logger), client
}
