package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/aging"
	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/domain/shared"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Invoice, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, customerID uuid.UUID, number string, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, number, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindUnsettled(ctx context.Context) ([]ledger.Invoice, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *ledger.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *ledger.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockCustomerRepository struct {
	account.CustomerRepository
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Customer), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

var asOf = time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC)

func newInvoiceService(invoices *MockInvoiceRepository, customers *MockCustomerRepository) *InvoiceService {
	svc := NewInvoiceService(invoices, customers, nil)
	svc.now = func() time.Time { return asOf }
	return svc
}

func invoiceInput(number string, amount, paid int64, due time.Time) ledger.InvoiceInput {
	return ledger.InvoiceInput{
		InvoiceNumber: number,
		InvoiceDate:   ptr(due.AddDate(0, 0, -30)),
		InvoiceAmount: ptr(decimal.NewFromInt(amount)),
		PaidAmount:    ptr(decimal.NewFromInt(paid)),
		DueDate:       ptr(due),
	}
}

func TestInvoiceCreate_DerivesAging(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	customers := new(MockCustomerRepository)
	svc := newInvoiceService(invoices, customers)
	ctx := context.Background()
	customerID := uuid.New()

	customers.On("FindByID", ctx, customerID).Return(&account.Customer{}, nil)
	invoices.On("ExistsByNumber", ctx, customerID, "INV-001", uuid.Nil).Return(false, nil)
	invoices.On("Save", ctx, mock.AnythingOfType("*ledger.Invoice")).Return(nil)

	resp, err := svc.Create(ctx, customerID, invoiceInput(" INV-001 ", 1000, 0, asOf.AddDate(0, 0, -45)), nil)

	require.NoError(t, err)
	assert.Equal(t, "INV-001", resp.InvoiceNumber)
	assert.Equal(t, ledger.InvoiceStatusRaised, resp.Status)
	assert.True(t, resp.IsOverdue)
	assert.Equal(t, 45, resp.DaysOverdue)
	assert.Equal(t, aging.Bucket31To60, resp.AgingBucket)
}

func TestInvoiceCreate_DuplicateNumber(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	customers := new(MockCustomerRepository)
	svc := newInvoiceService(invoices, customers)
	ctx := context.Background()
	customerID := uuid.New()

	customers.On("FindByID", ctx, customerID).Return(&account.Customer{}, nil)
	invoices.On("ExistsByNumber", ctx, customerID, "INV-001", uuid.Nil).Return(true, nil)

	_, err := svc.Create(ctx, customerID, invoiceInput("INV-001", 1000, 0, asOf), nil)

	assert.True(t, shared.IsConflict(err))
	invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceCreate_Overpaid(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	customers := new(MockCustomerRepository)
	svc := newInvoiceService(invoices, customers)
	ctx := context.Background()
	customerID := uuid.New()
	customers.On("FindByID", ctx, customerID).Return(&account.Customer{}, nil)

	_, err := svc.Create(ctx, customerID, invoiceInput("INV-9", 100, 150, asOf), nil)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("paid_amount"))
}

func TestInvoiceGet_OtherCustomersInvoiceIsHidden(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	svc := newInvoiceService(invoices, new(MockCustomerRepository))
	ctx := context.Background()

	inv, err := ledger.NewInvoice(uuid.New(), invoiceInput("INV-1", 10, 0, asOf), nil)
	require.NoError(t, err)
	invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)

	_, err = svc.Get(ctx, uuid.New(), inv.ID)

	assert.True(t, shared.IsNotFound(err))
}

func TestInvoiceUpdate_MarkPaid(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	svc := newInvoiceService(invoices, new(MockCustomerRepository))
	ctx := context.Background()
	customerID := uuid.New()

	inv, err := ledger.NewInvoice(customerID, invoiceInput("INV-1", 500, 0, asOf.AddDate(0, 0, -100)), nil)
	require.NoError(t, err)
	invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
	invoices.On("SaveWithLock", ctx, inv).Return(nil)

	resp, err := svc.Update(ctx, customerID, inv.ID, ledger.InvoicePatch{
		Status:     ptr(ledger.InvoiceStatusPaid),
		PaidAmount: ptr(decimal.NewFromInt(500)),
	}, nil)

	require.NoError(t, err)
	assert.False(t, resp.IsOverdue)
	assert.True(t, resp.Outstanding.IsZero())
	assert.Equal(t, 2, resp.Version)
}

func TestInvoiceDelete(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	svc := newInvoiceService(invoices, new(MockCustomerRepository))
	ctx := context.Background()
	customerID := uuid.New()

	inv, err := ledger.NewInvoice(customerID, invoiceInput("INV-1", 500, 0, asOf), nil)
	require.NoError(t, err)
	invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
	invoices.On("Delete", ctx, inv.ID).Return(nil)

	require.NoError(t, svc.Delete(ctx, customerID, inv.ID, nil))
	invoices.AssertExpectations(t)
}

func TestInvoiceSummary_UsesDerivedOverdue(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	customers := new(MockCustomerRepository)
	svc := newInvoiceService(invoices, customers)
	ctx := context.Background()
	customerID := uuid.New()

	mk := func(number string, amount, paid int64, due time.Time, status ledger.InvoiceStatus) ledger.Invoice {
		in := invoiceInput(number, amount, paid, due)
		in.Status = status
		inv, err := ledger.NewInvoice(customerID, in, nil)
		require.NoError(t, err)
		return *inv
	}
	list := []ledger.Invoice{
		mk("A", 1000, 0, asOf.AddDate(0, 0, -10), ledger.InvoiceStatusRaised),
		mk("B", 2000, 500, asOf.AddDate(0, 0, -95), ledger.InvoiceStatusPartiallyPaid),
		mk("C", 300, 300, asOf.AddDate(0, 0, -200), ledger.InvoiceStatusPaid),
		mk("D", 700, 0, asOf.AddDate(0, 0, 20), ledger.InvoiceStatusOverdue),
	}
	customers.On("FindByID", ctx, customerID).Return(&account.Customer{}, nil)
	invoices.On("FindByCustomer", ctx, customerID).Return(list, nil)

	s, err := svc.Summary(ctx, customerID)

	require.NoError(t, err)
	assert.Equal(t, 4, s.InvoiceCount)
	assert.True(t, decimal.NewFromInt(4000).Equal(s.TotalInvoiced))
	assert.True(t, decimal.NewFromInt(800).Equal(s.TotalPaid))
	assert.True(t, decimal.NewFromInt(3200).Equal(s.Pending))
	assert.True(t, decimal.NewFromInt(2500).Equal(s.Overdue))
	assert.Equal(t, 2, s.OverdueCount)
	assert.Equal(t, 1, s.Aging[aging.Bucket0To30])
	assert.Equal(t, 1, s.Aging[aging.Bucket90Plus])
	assert.Equal(t, 0, s.Aging[aging.Bucket31To60])
}

func TestInvoiceList_UnknownCustomer(t *testing.T) {
	customers := new(MockCustomerRepository)
	svc := newInvoiceService(new(MockInvoiceRepository), customers)
	ctx := context.Background()
	id := uuid.New()
	customers.On("FindByID", ctx, id).Return(nil, shared.NewNotFoundError("Customer"))

	_, err := svc.List(ctx, id)

	assert.True(t, shared.IsNotFound(err))
}
