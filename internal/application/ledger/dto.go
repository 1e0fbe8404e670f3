package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/aging"
	"github.com/cshub/backend/internal/domain/ledger"
)

// InvoiceResponse is the API view of an invoice with its derived aging
type InvoiceResponse struct {
	ID                 uuid.UUID            `json:"id"`
	CustomerID         uuid.UUID            `json:"customer_id"`
	InvoiceNumber      string               `json:"invoice_number"`
	InvoiceDate        time.Time            `json:"invoice_date"`
	BillingPeriodStart *time.Time           `json:"billing_period_start,omitempty"`
	BillingPeriodEnd   *time.Time           `json:"billing_period_end,omitempty"`
	InvoiceAmount      decimal.Decimal      `json:"invoice_amount"`
	PaidAmount         decimal.Decimal      `json:"paid_amount"`
	Outstanding        decimal.Decimal      `json:"outstanding"`
	DueDate            time.Time            `json:"due_date"`
	Status             ledger.InvoiceStatus `json:"status"`
	Notes              string               `json:"notes,omitempty"`
	IsOverdue          bool                 `json:"is_overdue"`
	DaysOverdue        int                  `json:"days_overdue"`
	AgingBucket        aging.Bucket         `json:"aging_bucket,omitempty"`
	Version            int                  `json:"version"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// ToInvoiceResponse maps an invoice, deriving its aging as of asOf
func ToInvoiceResponse(i *ledger.Invoice, asOf time.Time) InvoiceResponse {
	a := i.Aging(asOf)
	r := InvoiceResponse{
		ID:                 i.ID,
		CustomerID:         i.CustomerID,
		InvoiceNumber:      i.InvoiceNumber,
		InvoiceDate:        i.InvoiceDate,
		BillingPeriodStart: i.BillingPeriodStart,
		BillingPeriodEnd:   i.BillingPeriodEnd,
		InvoiceAmount:      i.InvoiceAmount,
		PaidAmount:         i.PaidAmount,
		Outstanding:        i.Outstanding(),
		DueDate:            i.DueDate,
		Status:             i.Status,
		Notes:              i.Notes,
		IsOverdue:          a.Overdue,
		DaysOverdue:        a.DaysOverdue,
		Version:            i.Version,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
	}
	if a.Overdue {
		r.AgingBucket = a.Bucket
	}
	return r
}
