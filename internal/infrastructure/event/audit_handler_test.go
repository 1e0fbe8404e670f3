package event

import (
	"context"
	"testing"

	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLogHandler_LogsPayload(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewEventSerializer()
	RegisterDomainEvents(s)
	h := NewAuditLogHandler(s, zap.New(core))
	assert.Nil(t, h.EventTypes())

	actor := uuid.New()
	inv := &ledger.Invoice{
		CustomerID:    uuid.New(),
		InvoiceNumber: "INV-7",
		InvoiceAmount: decimal.NewFromInt(100),
		PaidAmount:    decimal.Zero,
	}
	inv.ID = uuid.New()
	e := ledger.NewInvoiceEvent(ledger.EventTypeInvoiceCreated, inv, &actor)

	require.NoError(t, h.Handle(context.Background(), e))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "audit", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, ledger.EventTypeInvoiceCreated, ctx["event_type"])
	assert.Equal(t, actor.String(), ctx["actor_id"])
	assert.Contains(t, ctx["payload"], `"invoice_number":"INV-7"`)
}

func TestAuditLogHandler_UnregisteredEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(NewEventSerializer(), zap.New(core))

	require.NoError(t, h.Handle(context.Background(), newTestEvent("Mystery")))

	entries := logs.FilterMessage("Unregistered domain event").All()
	require.Len(t, entries, 1)
	_, hasActor := entries[0].ContextMap()["actor_id"]
	assert.False(t, hasActor)
}
