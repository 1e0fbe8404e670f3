package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/shared"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCompanyName(ctx context.Context, name string) (*account.Customer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByCompanyName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter account.CustomerFilter) ([]account.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]account.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter account.CustomerFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *account.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, c *account.Customer) error {
	return m.Called(ctx, c).Error(0)
}

type MockChurnRecordRepository struct {
	mock.Mock
}

func (m *MockChurnRecordRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*account.ChurnRecord, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.ChurnRecord), args.Error(1)
}

func (m *MockChurnRecordRepository) ExistsForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChurnRecordRepository) Save(ctx context.Context, r *account.ChurnRecord) error {
	return m.Called(ctx, r).Error(0)
}

type MockRiskRepository struct {
	mock.Mock
}

func (m *MockRiskRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Risk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Risk), args.Error(1)
}

func (m *MockRiskRepository) FindAll(ctx context.Context, filter account.RiskFilter) ([]account.Risk, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]account.Risk), args.Error(1)
}

func (m *MockRiskRepository) Count(ctx context.Context, filter account.RiskFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRiskRepository) Save(ctx context.Context, r *account.Risk) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRiskRepository) SaveWithLock(ctx context.Context, r *account.Risk) error {
	return m.Called(ctx, r).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

func ptr[T any](v T) *T { return &v }

func existingCustomer() *account.Customer {
	c, err := account.NewCustomer(account.CustomerInput{
		CompanyName: "Acme Corp",
		ARR:         decimal.NewFromInt(120000),
	}, nil)
	if err != nil {
		panic(err)
	}
	c.ClearDomainEvents()
	return c
}

func validChurnInput() *account.ChurnInput {
	return &account.ChurnInput{
		ChurnType:              account.ChurnTypeLogo,
		EffectiveChurnDate:     ptr(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)),
		RevenueImpact:          ptr(decimal.NewFromInt(120000)),
		PrimaryReason:          account.ChurnReasonCompetition,
		CouldHaveBeenPrevented: account.PreventableYes,
		OwnerResponsible:       account.ChurnOwnerCS,
	}
}

func validGateRisk() *account.RiskInput {
	return &account.RiskInput{
		Title:        "Champion left",
		Description:  "Our sponsor moved to another company",
		Category:     account.RiskCategoryRelationship,
		Subcategory:  "Champion Left Organization",
		Severity:     account.RiskSeverityHigh,
		AssignedToID: ptr(uuid.New()),
	}
}
