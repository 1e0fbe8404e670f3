package pipeline

import (
	"context"

	"github.com/cshub/backend/internal/domain/pipeline"
)

// TransactionScope binds an opportunity write and its stage log append to
// one transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are bound to one database transaction
type TransactionalRepositories interface {
	OpportunityRepo() pipeline.OpportunityRepository
}

// NoOpTransactionScope runs fn against the plain repository
type NoOpTransactionScope struct {
	opportunities pipeline.OpportunityRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(opportunities pipeline.OpportunityRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{opportunities: opportunities}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OpportunityRepo returns the opportunity repository
func (s *NoOpTransactionScope) OpportunityRepo() pipeline.OpportunityRepository {
	return s.opportunities
}
