package persistence

import (
	"context"
	"strings"

	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements account.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Customer")
	}
	return model.ToDomain(), nil
}

// FindByCompanyName finds a customer by name, ignoring case and surrounding space
func (r *GormCustomerRepository) FindByCompanyName(ctx context.Context, name string) (*account.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(company_name) = ?", normalizeName(name)).
		First(&model).Error; err != nil {
		return nil, translateError(err, "Customer")
	}
	return model.ToDomain(), nil
}

// ExistsByCompanyName checks if a customer with the name exists
func (r *GormCustomerRepository) ExistsByCompanyName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("LOWER(company_name) = ?", normalizeName(name)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter account.CustomerFilter) ([]account.Customer, error) {
	var customerModels []models.CustomerModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	query = paginate(query, filter.Filter, CustomerSortFields)

	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]account.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter account.CustomerFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *account.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, "Customer '"+customer.CompanyName+"'")
	}
	customer.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *account.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	if err := updateWithLock(r.db.WithContext(ctx), model, customer.ID, customer.PersistedVersion(), "Customer '"+customer.CompanyName+"'"); err != nil {
		return err
	}
	customer.MarkPersisted()
	return nil
}

// applyFilter applies the customer filter predicates
func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter account.CustomerFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(company_name) LIKE ?", "%"+normalizeName(filter.Search)+"%")
	}
	if filter.AccountStatus != "" {
		query = query.Where("account_status = ?", filter.AccountStatus)
	}
	if filter.HealthStatus != "" {
		query = query.Where("health_status = ?", filter.HealthStatus)
	}
	if filter.CSMOwnerID != nil {
		query = query.Where("csm_owner_id = ?", *filter.CSMOwnerID)
	}
	return query
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GormChurnRecordRepository implements account.ChurnRecordRepository using GORM
type GormChurnRecordRepository struct {
	db *gorm.DB
}

// NewGormChurnRecordRepository creates a new GormChurnRecordRepository
func NewGormChurnRecordRepository(db *gorm.DB) *GormChurnRecordRepository {
	return &GormChurnRecordRepository{db: db}
}

// FindByCustomerID returns the churn record of a customer
func (r *GormChurnRecordRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*account.ChurnRecord, error) {
	var model models.ChurnRecordModel
	if err := r.db.WithContext(ctx).First(&model, "customer_id = ?", customerID).Error; err != nil {
		return nil, translateError(err, "Churn record")
	}
	return model.ToDomain(), nil
}

// ExistsForCustomer checks whether the customer already has a churn record
func (r *GormChurnRecordRepository) ExistsForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ChurnRecordModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a churn record
func (r *GormChurnRecordRepository) Save(ctx context.Context, record *account.ChurnRecord) error {
	if err := r.db.WithContext(ctx).Create(models.ChurnRecordModelFromDomain(record)).Error; err != nil {
		return translateError(err, "Churn record")
	}
	return nil
}

// Ensure the repositories implement the domain interfaces
var (
	_ account.CustomerRepository    = (*GormCustomerRepository)(nil)
	_ account.ChurnRecordRepository = (*GormChurnRecordRepository)(nil)
)
