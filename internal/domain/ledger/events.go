package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/shared"
)

// AggregateTypeInvoice is the aggregate type for invoices
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated = "InvoiceCreated"
	EventTypeInvoiceUpdated = "InvoiceUpdated"
	EventTypeInvoiceDeleted = "InvoiceDeleted"
)

// InvoiceEvent is published on every invoice write
type InvoiceEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Status        InvoiceStatus   `json:"status"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// NewInvoiceEvent creates an invoice event of the given type
func NewInvoiceEvent(eventType string, i *Invoice, actor *uuid.UUID) *InvoiceEvent {
	return &InvoiceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, i.ID, actor),
		InvoiceID:       i.ID,
		CustomerID:      i.CustomerID,
		InvoiceNumber:   i.InvoiceNumber,
		Status:          i.Status,
		InvoiceAmount:   i.InvoiceAmount,
		PaidAmount:      i.PaidAmount,
	}
}
