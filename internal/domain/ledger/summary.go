package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/aging"
)

// Summary aggregates a customer's invoices. Nothing here is stored.
type Summary struct {
	InvoiceCount  int             `json:"invoice_count"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Pending       decimal.Decimal `json:"pending"`
	Overdue       decimal.Decimal `json:"overdue"`
	OverdueCount  int             `json:"overdue_count"`
	Aging         aging.Tally     `json:"aging"`
	AsOf          time.Time       `json:"as_of"`
}

// Summarize computes totals and aging buckets over invoices as of asOf.
// An invoice counts as overdue when it is not Paid and its due date has
// passed, whatever its stored status says.
func Summarize(invoices []Invoice, asOf time.Time) Summary {
	s := Summary{
		InvoiceCount:  len(invoices),
		TotalInvoiced: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Overdue:       decimal.Zero,
		Aging:         aging.NewTally(),
		AsOf:          asOf,
	}
	for i := range invoices {
		inv := &invoices[i]
		s.TotalInvoiced = s.TotalInvoiced.Add(inv.InvoiceAmount)
		s.TotalPaid = s.TotalPaid.Add(inv.PaidAmount)

		r := inv.Aging(asOf)
		if r.Overdue {
			s.Overdue = s.Overdue.Add(inv.InvoiceAmount.Sub(inv.PaidAmount))
			s.OverdueCount++
			s.Aging.Add(r)
		}
	}
	s.Pending = s.TotalInvoiced.Sub(s.TotalPaid)
	return s
}
