// Package dashboard serves portfolio-wide counters for the landing page.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/infrastructure/logger"
)

// DefaultCacheTTL bounds how stale cached stats may be
const DefaultCacheTTL = 5 * time.Minute

// Stats is a snapshot of the customer portfolio
type Stats struct {
	TotalCustomers     int64            `json:"total_customers"`
	TotalARR           decimal.Decimal  `json:"total_arr"`
	ByHealthStatus     map[string]int64 `json:"by_health_status"`
	ByAccountStatus    map[string]int64 `json:"by_account_status"`
	OpenRisks          int64            `json:"open_risks"`
	CriticalOpenRisks  int64            `json:"critical_open_risks"`
	OpenPipelineValue  decimal.Decimal  `json:"open_pipeline_value"`
	OpenOpportunities  int64            `json:"open_opportunities"`
	OverdueReceivables decimal.Decimal  `json:"overdue_receivables"`
	OverdueInvoices    int64            `json:"overdue_invoices"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

// StatsQuery computes stats from storage. Overdue figures are evaluated at asOf.
type StatsQuery interface {
	Collect(ctx context.Context, asOf time.Time) (*Stats, error)
}

// StatsCache stores the latest snapshot. Get returns nil, nil on a miss.
type StatsCache interface {
	Get(ctx context.Context) (*Stats, error)
	Set(ctx context.Context, stats *Stats, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Service returns cached portfolio stats, recomputing on a miss
type Service struct {
	query StatsQuery
	cache StatsCache
	ttl   time.Duration
	now   func() time.Time
}

// NewService creates a dashboard service. A nil cache disables caching.
func NewService(query StatsQuery, cache StatsCache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{query: query, cache: cache, ttl: ttl, now: time.Now}
}

// Stats returns the portfolio snapshot. Cache failures degrade to a fresh query.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			logger.L(ctx).Warn("Dashboard cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.query.Collect(ctx, s.now())
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = s.now()

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats, s.ttl); err != nil {
			logger.L(ctx).Warn("Dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}
