package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/aging"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/domain/validation"
)

// InvoiceStatus is the user-maintained billing label of an invoice.
// Overdue is also derived from the due date; the derived value is authoritative.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "Draft"
	InvoiceStatusRaised        InvoiceStatus = "Raised"
	InvoiceStatusPartiallyPaid InvoiceStatus = "Partially Paid"
	InvoiceStatusPaid          InvoiceStatus = "Paid"
	InvoiceStatusOverdue       InvoiceStatus = "Overdue"
)

// IsValid checks if the status is a known value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusRaised, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice is a bill raised to a customer
type Invoice struct {
	shared.BaseAggregateRoot
	CustomerID         uuid.UUID
	InvoiceNumber      string
	InvoiceDate        time.Time
	BillingPeriodStart *time.Time
	BillingPeriodEnd   *time.Time
	InvoiceAmount      decimal.Decimal
	PaidAmount         decimal.Decimal
	DueDate            time.Time
	Status             InvoiceStatus
	Notes              string
	CreatedBy          *uuid.UUID
}

// InvoiceInput carries the fields of a new invoice
type InvoiceInput struct {
	InvoiceNumber      string           `json:"invoice_number" validate:"notblank,max=100"`
	InvoiceDate        *time.Time       `json:"invoice_date" validate:"required"`
	BillingPeriodStart *time.Time       `json:"billing_period_start"`
	BillingPeriodEnd   *time.Time       `json:"billing_period_end"`
	InvoiceAmount      *decimal.Decimal `json:"invoice_amount" validate:"required,gte=0"`
	PaidAmount         *decimal.Decimal `json:"paid_amount" validate:"omitempty,gte=0"`
	DueDate            *time.Time       `json:"due_date" validate:"required"`
	Status             InvoiceStatus    `json:"status" validate:"omitempty,enum"`
	Notes              string           `json:"notes"`
}

// ValidateInvoiceInput reports every invalid field of a new invoice
func ValidateInvoiceInput(in InvoiceInput) *shared.ValidationError {
	errs := validation.Struct(in)
	if errs == nil {
		errs = &shared.ValidationError{}
	}
	checkAmounts(errs, in.InvoiceAmount, in.PaidAmount)
	checkPeriod(errs, in.BillingPeriodStart, in.BillingPeriodEnd)
	if !errs.HasErrors() {
		return nil
	}
	return errs
}

func checkAmounts(errs *shared.ValidationError, invoiced, paid *decimal.Decimal) {
	if invoiced == nil || paid == nil || errs.Has("invoice_amount") || errs.Has("paid_amount") {
		return
	}
	if paid.GreaterThan(*invoiced) {
		errs.Add("paid_amount", "paid_amount cannot exceed invoice_amount")
	}
}

func checkPeriod(errs *shared.ValidationError, start, end *time.Time) {
	if start != nil && end != nil && end.Before(*start) {
		errs.Add("billing_period_end", "billing_period_end must not be before billing_period_start")
	}
}

// NewInvoice creates an invoice for a customer
func NewInvoice(customerID uuid.UUID, in InvoiceInput, actor *uuid.UUID) (*Invoice, error) {
	if errs := ValidateInvoiceInput(in); errs != nil {
		return nil, errs
	}

	inv := &Invoice{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		CustomerID:         customerID,
		InvoiceNumber:      strings.TrimSpace(in.InvoiceNumber),
		InvoiceDate:        *in.InvoiceDate,
		BillingPeriodStart: in.BillingPeriodStart,
		BillingPeriodEnd:   in.BillingPeriodEnd,
		InvoiceAmount:      *in.InvoiceAmount,
		PaidAmount:         decimal.Zero,
		DueDate:            *in.DueDate,
		Status:             in.Status,
		Notes:              in.Notes,
		CreatedBy:          actor,
	}
	if in.PaidAmount != nil {
		inv.PaidAmount = *in.PaidAmount
	}
	if inv.Status == "" {
		inv.Status = InvoiceStatusRaised
	}

	inv.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceCreated, inv, actor))
	return inv, nil
}

// InvoicePatch is a partial invoice update, status included
type InvoicePatch struct {
	InvoiceNumber      *string          `json:"invoice_number" validate:"omitempty,notblank,max=100"`
	InvoiceDate        *time.Time       `json:"invoice_date"`
	BillingPeriodStart *time.Time       `json:"billing_period_start"`
	BillingPeriodEnd   *time.Time       `json:"billing_period_end"`
	InvoiceAmount      *decimal.Decimal `json:"invoice_amount" validate:"omitempty,gte=0"`
	PaidAmount         *decimal.Decimal `json:"paid_amount" validate:"omitempty,gte=0"`
	DueDate            *time.Time       `json:"due_date"`
	Status             *InvoiceStatus   `json:"status" validate:"omitempty,enum"`
	Notes              *string          `json:"notes"`
}

// Apply updates the invoice. Amount and period rules are checked against the
// resulting values so a partial patch cannot break them.
func (i *Invoice) Apply(p InvoicePatch, actor *uuid.UUID) (bool, error) {
	errs := validation.Struct(p)
	if errs == nil {
		errs = &shared.ValidationError{}
	}
	invoiced, paid := i.InvoiceAmount, i.PaidAmount
	if p.InvoiceAmount != nil {
		invoiced = *p.InvoiceAmount
	}
	if p.PaidAmount != nil {
		paid = *p.PaidAmount
	}
	checkAmounts(errs, &invoiced, &paid)
	start, end := i.BillingPeriodStart, i.BillingPeriodEnd
	if p.BillingPeriodStart != nil {
		start = p.BillingPeriodStart
	}
	if p.BillingPeriodEnd != nil {
		end = p.BillingPeriodEnd
	}
	checkPeriod(errs, start, end)
	if errs.HasErrors() {
		return false, errs
	}

	var changed bool
	if p.InvoiceNumber != nil {
		n := strings.TrimSpace(*p.InvoiceNumber)
		if n != i.InvoiceNumber {
			i.InvoiceNumber = n
			changed = true
		}
	}
	changed = setTime(&i.InvoiceDate, p.InvoiceDate) || changed
	changed = setTimeRef(&i.BillingPeriodStart, p.BillingPeriodStart) || changed
	changed = setTimeRef(&i.BillingPeriodEnd, p.BillingPeriodEnd) || changed
	changed = setDecimal(&i.InvoiceAmount, p.InvoiceAmount) || changed
	changed = setDecimal(&i.PaidAmount, p.PaidAmount) || changed
	changed = setTime(&i.DueDate, p.DueDate) || changed
	if p.Status != nil && *p.Status != i.Status {
		i.Status = *p.Status
		changed = true
	}
	if p.Notes != nil && *p.Notes != i.Notes {
		i.Notes = *p.Notes
		changed = true
	}

	if changed {
		i.IncrementVersion()
		i.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceUpdated, i, actor))
	}
	return changed, nil
}

// Outstanding returns the unpaid remainder, never negative
func (i *Invoice) Outstanding() decimal.Decimal {
	d := i.InvoiceAmount.Sub(i.PaidAmount)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// IsSettled reports whether the invoice is marked paid
func (i *Invoice) IsSettled() bool {
	return i.Status == InvoiceStatusPaid
}

// Aging classifies the invoice as of asOf
func (i *Invoice) Aging(asOf time.Time) aging.Result {
	return aging.Classify(i.DueDate, i.IsSettled(), asOf)
}

func setTime(dst *time.Time, src *time.Time) bool {
	if src == nil || dst.Equal(*src) {
		return false
	}
	*dst = *src
	return true
}

func setTimeRef(dst **time.Time, src *time.Time) bool {
	if src == nil || (*dst != nil && (*dst).Equal(*src)) {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func setDecimal(dst *decimal.Decimal, src *decimal.Decimal) bool {
	if src == nil || dst.Equal(*src) {
		return false
	}
	*dst = *src
	return true
}
