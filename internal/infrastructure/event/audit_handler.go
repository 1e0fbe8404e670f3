package event

import (
	"context"

	"github.com/cshub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per domain event
type AuditLogHandler struct {
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewAuditLogHandler creates an audit handler logging under the "audit" name
func NewAuditLogHandler(serializer *EventSerializer, logger *zap.Logger) *AuditLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogHandler{serializer: serializer, logger: logger.Named("audit")}
}

// EventTypes subscribes to every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event envelope and its JSON payload
func (h *AuditLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
	}
	if actor := e.ActorID(); actor != uuid.Nil {
		fields = append(fields, zap.String("actor_id", actor.String()))
	}

	if !h.serializer.IsRegistered(e.EventType()) {
		h.logger.Warn("Unregistered domain event", fields...)
		return nil
	}
	payload, err := h.serializer.Serialize(e)
	if err != nil {
		return err
	}
	h.logger.Info("Domain event", append(fields, zap.ByteString("payload", payload))...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
