// Package ledger orchestrates invoice bookkeeping for customers.
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/application/event"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/infrastructure/logger"
)

// InvoiceService handles invoice operations scoped to one customer
type InvoiceService struct {
	invoiceRepo  ledger.InvoiceRepository
	customerRepo account.CustomerRepository
	dispatcher   *event.Dispatcher
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo ledger.InvoiceRepository, customerRepo account.CustomerRepository, dispatcher *event.Dispatcher) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		dispatcher:   dispatcher,
		now:          time.Now,
	}
}

// Create raises an invoice. Invoice numbers are unique per customer.
func (s *InvoiceService) Create(ctx context.Context, customerID uuid.UUID, in ledger.InvoiceInput, actor *uuid.UUID) (*InvoiceResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	if errs := ledger.ValidateInvoiceInput(in); errs != nil {
		return nil, errs
	}
	if err := s.ensureNumberAvailable(ctx, customerID, in.InvoiceNumber, uuid.Nil); err != nil {
		return nil, err
	}

	inv, err := ledger.NewInvoice(customerID, in, actor)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, inv)

	logger.L(ctx).Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("amount", inv.InvoiceAmount.String()),
	)
	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// Get returns one invoice of the customer
func (s *InvoiceService) Get(ctx context.Context, customerID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, customerID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// List returns every invoice of the customer, newest first
func (s *InvoiceService) List(ctx context.Context, customerID uuid.UUID) ([]InvoiceResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	asOf := s.now()
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i], asOf)
	}
	return out, nil
}

// Update edits an invoice, status included
func (s *InvoiceService) Update(ctx context.Context, customerID, invoiceID uuid.UUID, patch ledger.InvoicePatch, actor *uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, customerID, invoiceID)
	if err != nil {
		return nil, err
	}
	if patch.InvoiceNumber != nil && strings.TrimSpace(*patch.InvoiceNumber) != inv.InvoiceNumber {
		if err := s.ensureNumberAvailable(ctx, customerID, *patch.InvoiceNumber, inv.ID); err != nil {
			return nil, err
		}
	}

	changed, err := inv.Apply(patch, actor)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return nil, err
		}
		s.dispatcher.Dispatch(ctx, inv)
	}
	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// Delete removes an invoice of the customer
func (s *InvoiceService) Delete(ctx context.Context, customerID, invoiceID uuid.UUID, actor *uuid.UUID) error {
	inv, err := s.load(ctx, customerID, invoiceID)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, inv.ID); err != nil {
		return err
	}
	inv.AddDomainEvent(ledger.NewInvoiceEvent(ledger.EventTypeInvoiceDeleted, inv, actor))
	s.dispatcher.Dispatch(ctx, inv)
	return nil
}

// Summary aggregates the customer's invoices as of now
func (s *InvoiceService) Summary(ctx context.Context, customerID uuid.UUID) (*ledger.Summary, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	summary := ledger.Summarize(invoices, s.now())
	return &summary, nil
}

// load finds the invoice and hides invoices of other customers
func (s *InvoiceService) load(ctx context.Context, customerID, invoiceID uuid.UUID) (*ledger.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.CustomerID != customerID {
		return nil, shared.NewNotFoundError("Invoice")
	}
	return inv, nil
}

func (s *InvoiceService) ensureNumberAvailable(ctx context.Context, customerID uuid.UUID, number string, exclude uuid.UUID) error {
	number = strings.TrimSpace(number)
	exists, err := s.invoiceRepo.ExistsByNumber(ctx, customerID, number, exclude)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewAlreadyExistsError("Invoice '" + number + "' already exists for this customer")
	}
	return nil
}
