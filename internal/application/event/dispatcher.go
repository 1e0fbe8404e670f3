// Package event hands committed aggregate events to the event bus.
package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/cshub/backend/internal/domain/shared"
)

// Dispatcher publishes the pending events of aggregates after their
// transaction committed. Publishing failures are logged and swallowed:
// the write already happened and subscribers are best-effort.
type Dispatcher struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil publisher drops events.
func NewDispatcher(publisher shared.EventPublisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{publisher: publisher, logger: logger}
}

// Dispatch publishes and clears the events of every aggregate
func (d *Dispatcher) Dispatch(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if d == nil {
		return
	}
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		agg.ClearDomainEvents()
		if d.publisher == nil {
			continue
		}
		if err := d.publisher.Publish(ctx, events...); err != nil {
			d.logger.Warn("Failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Int("event_count", len(events)),
				zap.Error(err),
			)
		}
	}
}
