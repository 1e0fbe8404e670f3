// Package event is the in-process domain event bus and its infrastructure subscribers.
package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cshub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Observer is notified once per delivered event
type Observer interface {
	EventDelivered(ctx context.Context, eventType string, handlers int, failures int)
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithObserver attaches an observer (usually the business metrics recorder)
func WithObserver(o Observer) BusOption {
	return func(b *InMemoryEventBus) {
		b.observer = o
	}
}

// InMemoryEventBus delivers events synchronously to subscribed handlers.
// A failing or panicking handler never stops delivery to the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	observer Observer
	running  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands every event to its handlers. Handler failures are logged
// and counted; Publish itself only fails on a cancelled context.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		handlers := b.registry.HandlersFor(e.EventType())
		failures := 0
		for _, h := range handlers {
			if err := b.deliver(ctx, h, e); err != nil {
				failures++
				b.logger.Error("Event handler failed",
					zap.String("event_type", e.EventType()),
					zap.String("event_id", e.EventID().String()),
					zap.String("aggregate_id", e.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
		if b.observer != nil {
			b.observer.EventDelivered(ctx, e.EventType(), len(handlers), failures)
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; an empty list subscribes to everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Event handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus running
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop marks the bus stopped. Delivery is synchronous so nothing is in flight
// once the last Publish call returned.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("Event bus stopped")
	return nil
}

// Running reports whether Start was called without a matching Stop
func (b *InMemoryEventBus) Running() bool {
	return b.running.Load()
}

func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
