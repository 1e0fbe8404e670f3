package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/cshub/backend/internal/domain/shared"
)

// CustomerFilter narrows customer listings
type CustomerFilter struct {
	shared.Filter
	AccountStatus AccountStatus
	HealthStatus  HealthStatus
	CSMOwnerID    *uuid.UUID
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByCompanyName finds a customer by name, case-insensitively
	FindByCompanyName(ctx context.Context, name string) (*Customer, error)

	// ExistsByCompanyName checks name uniqueness, case-insensitively
	ExistsByCompanyName(ctx context.Context, name string) (bool, error)

	// FindAll finds customers matching the filter
	FindAll(ctx context.Context, filter CustomerFilter) ([]Customer, error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter CustomerFilter) (int64, error)

	// Save inserts a new customer
	Save(ctx context.Context, customer *Customer) error

	// SaveWithLock updates a customer if nobody else changed it since it was loaded
	SaveWithLock(ctx context.Context, customer *Customer) error
}

// ChurnRecordRepository persists churn documentation
type ChurnRecordRepository interface {
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*ChurnRecord, error)
	ExistsForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error)
	Save(ctx context.Context, record *ChurnRecord) error
}

// RiskFilter narrows risk listings
type RiskFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     RiskStatus
	Severity   RiskSeverity
}

// RiskRepository persists risks
type RiskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Risk, error)
	FindAll(ctx context.Context, filter RiskFilter) ([]Risk, error)
	Count(ctx context.Context, filter RiskFilter) (int64, error)
	Save(ctx context.Context, risk *Risk) error
	SaveWithLock(ctx context.Context, risk *Risk) error
}
