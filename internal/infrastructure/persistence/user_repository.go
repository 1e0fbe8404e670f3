package persistence

import (
	"context"

	"github.com/cshub/backend/internal/domain/user"
	"github.com/cshub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository reads the user directory
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", user.NormalizeEmail(email)).
		First(&model).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return model.ToDomain(), nil
}

// FindAll lists users, optionally narrowed by role and to active accounts
func (r *GormUserRepository) FindAll(ctx context.Context, role user.Role, activeOnly bool) ([]user.User, error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var userModels []models.UserModel
	if err := query.Order("full_name ASC, id ASC").Find(&userModels).Error; err != nil {
		return nil, err
	}
	users := make([]user.User, len(userModels))
	for i := range userModels {
		users[i] = *userModels[i].ToDomain()
	}
	return users, nil
}

// Save inserts a directory entry. The directory is maintained outside the
// service; seeding and tests use this.
func (r *GormUserRepository) Save(ctx context.Context, u *user.User) error {
	if err := r.db.WithContext(ctx).Create(models.UserModelFromDomain(u)).Error; err != nil {
		return translateError(err, "User '"+u.Email+"'")
	}
	return nil
}

var _ user.Repository = (*GormUserRepository)(nil)
