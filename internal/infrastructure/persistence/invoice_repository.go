package persistence

import (
	"context"

	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements ledger.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Invoice")
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns a customer's invoices, newest invoice date first
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("invoice_date DESC, created_at DESC, id ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// ExistsByNumber checks invoice number uniqueness within a customer
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, customerID uuid.UUID, number string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("customer_id = ? AND invoice_number = ?", customerID, number)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindUnsettled returns every invoice whose status is not Paid
func (r *GormInvoiceRepository) FindUnsettled(ctx context.Context) ([]ledger.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status <> ?", ledger.InvoiceStatusPaid).
		Order("due_date ASC, id ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// Save inserts a new invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	if err := r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(invoice)).Error; err != nil {
		return translateError(err, "Invoice '"+invoice.InvoiceNumber+"'")
	}
	invoice.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := updateWithLock(r.db.WithContext(ctx), model, invoice.ID, invoice.PersistedVersion(), "Invoice '"+invoice.InvoiceNumber+"'"); err != nil {
		return err
	}
	invoice.MarkPersisted()
	return nil
}

// Delete removes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Invoice")
	}
	return nil
}

func toInvoices(invoiceModels []models.InvoiceModel) []ledger.Invoice {
	out := make([]ledger.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		out[i] = *invoiceModels[i].ToDomain()
	}
	return out
}

var _ ledger.InvoiceRepository = (*GormInvoiceRepository)(nil)
