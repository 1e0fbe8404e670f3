package persistence

import (
	"context"

	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRiskRepository implements account.RiskRepository using GORM
type GormRiskRepository struct {
	db *gorm.DB
}

// NewGormRiskRepository creates a new GormRiskRepository
func NewGormRiskRepository(db *gorm.DB) *GormRiskRepository {
	return &GormRiskRepository{db: db}
}

// FindByID finds a risk by its ID
func (r *GormRiskRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Risk, error) {
	var model models.RiskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Risk")
	}
	return model.ToDomain(), nil
}

// FindAll finds risks matching the filter
func (r *GormRiskRepository) FindAll(ctx context.Context, filter account.RiskFilter) ([]account.Risk, error) {
	var riskModels []models.RiskModel
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&models.RiskModel{}), filter), filter.Filter, RiskSortFields)
	if err := query.Find(&riskModels).Error; err != nil {
		return nil, err
	}

	risks := make([]account.Risk, len(riskModels))
	for i := range riskModels {
		risks[i] = *riskModels[i].ToDomain()
	}
	return risks, nil
}

// Count counts risks matching the filter
func (r *GormRiskRepository) Count(ctx context.Context, filter account.RiskFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.RiskModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new risk
func (r *GormRiskRepository) Save(ctx context.Context, risk *account.Risk) error {
	if err := r.db.WithContext(ctx).Create(models.RiskModelFromDomain(risk)).Error; err != nil {
		return translateError(err, "Risk")
	}
	risk.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormRiskRepository) SaveWithLock(ctx context.Context, risk *account.Risk) error {
	model := models.RiskModelFromDomain(risk)
	if err := updateWithLock(r.db.WithContext(ctx), model, risk.ID, risk.PersistedVersion(), "Risk"); err != nil {
		return err
	}
	risk.MarkPersisted()
	return nil
}

func (r *GormRiskRepository) applyFilter(query *gorm.DB, filter account.RiskFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+normalizeName(filter.Search)+"%")
	}
	return query
}

var _ account.RiskRepository = (*GormRiskRepository)(nil)
