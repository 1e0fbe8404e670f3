package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/domain/pipeline"
	"github.com/cshub/backend/internal/domain/shared"
)

// InvalidationHandler drops cached stats whenever a counted record changes
type InvalidationHandler struct {
	cache  StatsCache
	logger *zap.Logger
}

// NewInvalidationHandler creates an InvalidationHandler
func NewInvalidationHandler(cache StatsCache, logger *zap.Logger) *InvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns every event that affects a dashboard counter
func (h *InvalidationHandler) EventTypes() []string {
	return []string{
		account.EventTypeCustomerCreated,
		account.EventTypeCustomerUpdated,
		account.EventTypeAccountStatusChanged,
		account.EventTypeCustomerChurned,
		account.EventTypeHealthStatusChanged,
		account.EventTypeRiskCreated,
		account.EventTypeRiskUpdated,
		pipeline.EventTypeOpportunityCreated,
		pipeline.EventTypeOpportunityUpdated,
		pipeline.EventTypeStageChanged,
		ledger.EventTypeInvoiceCreated,
		ledger.EventTypeInvoiceUpdated,
		ledger.EventTypeInvoiceDeleted,
	}
}

// Handle invalidates the cache
func (h *InvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.cache == nil {
		return nil
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Error("Failed to invalidate dashboard stats",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err),
		)
		return err
	}
	h.logger.Debug("Dashboard stats invalidated", zap.String("event_type", event.EventType()))
	return nil
}
