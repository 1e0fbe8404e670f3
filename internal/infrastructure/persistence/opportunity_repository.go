package persistence

import (
	"context"

	"github.com/cshub/backend/internal/domain/pipeline"
	"github.com/cshub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOpportunityRepository implements pipeline.OpportunityRepository using GORM.
// The stage log lives in opportunity_stage_changes and is only ever appended to.
type GormOpportunityRepository struct {
	db *gorm.DB
}

// NewGormOpportunityRepository creates a new GormOpportunityRepository
func NewGormOpportunityRepository(db *gorm.DB) *GormOpportunityRepository {
	return &GormOpportunityRepository{db: db}
}

// FindByID loads an opportunity together with its stage log
func (r *GormOpportunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*pipeline.Opportunity, error) {
	var model models.OpportunityModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Opportunity")
	}
	log, err := r.loadLog(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(log), nil
}

// FindAll lists opportunities; logs are not loaded
func (r *GormOpportunityRepository) FindAll(ctx context.Context, filter pipeline.OpportunityFilter) ([]pipeline.Opportunity, error) {
	var oppModels []models.OpportunityModel
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&models.OpportunityModel{}), filter), filter.Filter, OpportunitySortFields)
	if err := query.Find(&oppModels).Error; err != nil {
		return nil, err
	}

	out := make([]pipeline.Opportunity, len(oppModels))
	for i := range oppModels {
		out[i] = *oppModels[i].ToDomain(nil)
	}
	return out, nil
}

// Count counts opportunities matching the filter
func (r *GormOpportunityRepository) Count(ctx context.Context, filter pipeline.OpportunityFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OpportunityModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new opportunity and any log entries it already carries
func (r *GormOpportunityRepository) Save(ctx context.Context, o *pipeline.Opportunity) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.OpportunityModelFromDomain(o)).Error; err != nil {
		return translateError(err, "Opportunity")
	}
	if err := r.appendLog(db, o); err != nil {
		return err
	}
	o.MarkPersisted()
	return nil
}

// SaveWithLock updates the opportunity if its version is unchanged and appends
// pending stage changes. Run it inside a transaction so both land together.
func (r *GormOpportunityRepository) SaveWithLock(ctx context.Context, o *pipeline.Opportunity) error {
	db := r.db.WithContext(ctx)
	if err := updateWithLock(db, models.OpportunityModelFromDomain(o), o.ID, o.PersistedVersion(), "Opportunity"); err != nil {
		return err
	}
	if err := r.appendLog(db, o); err != nil {
		return err
	}
	o.MarkPersisted()
	return nil
}

// StageHistory returns the stage log ordered by sequence
func (r *GormOpportunityRepository) StageHistory(ctx context.Context, opportunityID uuid.UUID) ([]pipeline.StageChange, error) {
	log, err := r.loadLog(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	out := make([]pipeline.StageChange, len(log))
	for i := range log {
		out[i] = log[i].ToDomain()
	}
	return out, nil
}

func (r *GormOpportunityRepository) loadLog(ctx context.Context, opportunityID uuid.UUID) ([]models.StageChangeModel, error) {
	var log []models.StageChangeModel
	if err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("sequence ASC").
		Find(&log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

func (r *GormOpportunityRepository) appendLog(db *gorm.DB, o *pipeline.Opportunity) error {
	pending := o.PendingStageChanges()
	if len(pending) == 0 {
		return nil
	}
	rows := make([]*models.StageChangeModel, len(pending))
	for i := range pending {
		rows[i] = models.StageChangeModelFromDomain(o.ID, pending[i])
	}
	if err := db.Create(rows).Error; err != nil {
		return translateError(err, "Stage change")
	}
	o.MarkStageChangesPersisted()
	return nil
}

func (r *GormOpportunityRepository) applyFilter(query *gorm.DB, filter pipeline.OpportunityFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+normalizeName(filter.Search)+"%")
	}
	return query
}

var _ pipeline.OpportunityRepository = (*GormOpportunityRepository)(nil)
