package persistence

import (
	"errors"

	"github.com/cshub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm errors onto domain errors. It relies on
// gorm.Config.TranslateError so unique violations surface as ErrDuplicatedKey.
func translateError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewAlreadyExistsError(entity + " already exists")
	default:
		return err
	}
}

// updateWithLock writes every column of model when the stored version still
// equals expected. Zero rows means someone else committed first.
func updateWithLock(db *gorm.DB, model any, id any, expected int, entity string) error {
	result := db.Model(model).
		Where("id = ? AND version = ?", id, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, entity)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
