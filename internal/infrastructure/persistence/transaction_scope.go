package persistence

import (
	"context"

	appaccount "github.com/cshub/backend/internal/application/account"
	apppipeline "github.com/cshub/backend/internal/application/pipeline"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/pipeline"
	"gorm.io/gorm"
)

// GormAccountTransactionScope implements the account TransactionScope using
// GORM transactions. If fn returns an error the transaction is rolled back.
type GormAccountTransactionScope struct {
	db *gorm.DB
}

// NewGormAccountTransactionScope creates a new GormAccountTransactionScope
func NewGormAccountTransactionScope(db *gorm.DB) *GormAccountTransactionScope {
	return &GormAccountTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormAccountTransactionScope) Execute(ctx context.Context, fn func(repos appaccount.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormAccountRepositories{tx: tx})
	})
}

type gormAccountRepositories struct {
	tx *gorm.DB
}

func (r *gormAccountRepositories) CustomerRepo() account.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormAccountRepositories) ChurnRepo() account.ChurnRecordRepository {
	return NewGormChurnRecordRepository(r.tx)
}

func (r *gormAccountRepositories) RiskRepo() account.RiskRepository {
	return NewGormRiskRepository(r.tx)
}

// GormPipelineTransactionScope binds an opportunity update and its log append
// to one transaction
type GormPipelineTransactionScope struct {
	db *gorm.DB
}

// NewGormPipelineTransactionScope creates a new GormPipelineTransactionScope
func NewGormPipelineTransactionScope(db *gorm.DB) *GormPipelineTransactionScope {
	return &GormPipelineTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormPipelineTransactionScope) Execute(ctx context.Context, fn func(repos apppipeline.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPipelineRepositories{tx: tx})
	})
}

type gormPipelineRepositories struct {
	tx *gorm.DB
}

func (r *gormPipelineRepositories) OpportunityRepo() pipeline.OpportunityRepository {
	return NewGormOpportunityRepository(r.tx)
}

var (
	_ appaccount.TransactionScope           = (*GormAccountTransactionScope)(nil)
	_ appaccount.TransactionalRepositories  = (*gormAccountRepositories)(nil)
	_ apppipeline.TransactionScope          = (*GormPipelineTransactionScope)(nil)
	_ apppipeline.TransactionalRepositories = (*gormPipelineRepositories)(nil)
)
