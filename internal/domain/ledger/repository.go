package ledger

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByCustomer returns all invoices of a customer, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Invoice, error)

	// ExistsByNumber checks invoice number uniqueness within a customer,
	// ignoring the invoice identified by exclude
	ExistsByNumber(ctx context.Context, customerID uuid.UUID, number string, exclude uuid.UUID) (bool, error)

	// FindUnsettled returns every invoice not marked Paid, across customers
	FindUnsettled(ctx context.Context) ([]Invoice, error)

	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
