package account

import (
	"context"

	"github.com/cshub/backend/internal/domain/account"
)

// TransactionScope runs compound account writes atomically.
// If fn returns an error every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are bound to one database transaction
type TransactionalRepositories interface {
	CustomerRepo() account.CustomerRepository
	ChurnRepo() account.ChurnRecordRepository
	RiskRepo() account.RiskRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Tests use it with mocks.
type NoOpTransactionScope struct {
	customers account.CustomerRepository
	churns    account.ChurnRecordRepository
	risks     account.RiskRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	customers account.CustomerRepository,
	churns account.ChurnRecordRepository,
	risks account.RiskRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{customers: customers, churns: churns, risks: risks}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CustomerRepo returns the customer repository
func (s *NoOpTransactionScope) CustomerRepo() account.CustomerRepository { return s.customers }

// ChurnRepo returns the churn record repository
func (s *NoOpTransactionScope) ChurnRepo() account.ChurnRecordRepository { return s.churns }

// RiskRepo returns the risk repository
func (s *NoOpTransactionScope) RiskRepo() account.RiskRepository { return s.risks }
