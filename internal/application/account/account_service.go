package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/application/event"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/infrastructure/logger"
	"github.com/cshub/backend/internal/infrastructure/telemetry"
)

// AccountService handles the customer lifecycle: creation, edits and the
// gated account and health transitions
type AccountService struct {
	customerRepo account.CustomerRepository
	churnRepo    account.ChurnRecordRepository
	scope        TransactionScope
	dispatcher   *event.Dispatcher
	now          func() time.Time
}

// NewAccountService creates a new AccountService
func NewAccountService(
	customerRepo account.CustomerRepository,
	churnRepo account.ChurnRecordRepository,
	scope TransactionScope,
	dispatcher *event.Dispatcher,
) *AccountService {
	return &AccountService{
		customerRepo: customerRepo,
		churnRepo:    churnRepo,
		scope:        scope,
		dispatcher:   dispatcher,
		now:          time.Now,
	}
}

// CreateCustomer validates the record in full, then checks name uniqueness
func (s *AccountService) CreateCustomer(ctx context.Context, in account.CustomerInput, actor *uuid.UUID) (*CustomerResponse, error) {
	if errs := account.ValidateCustomerInput(in); errs != nil {
		return nil, errs
	}

	name := strings.TrimSpace(in.CompanyName)
	exists, err := s.customerRepo.ExistsByCompanyName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("Customer '" + name + "' already exists")
	}

	customer, err := account.NewCustomer(in, actor)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, customer)

	logger.L(ctx).Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("company_name", customer.CompanyName),
	)
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetCustomer retrieves a customer by ID
func (s *AccountService) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// ListCustomers returns one page of customers matching the filter
func (s *AccountService) ListCustomers(ctx context.Context, q CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	filter, err := q.toDomain()
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateCustomer applies a partial update. Status fields in the patch go
// through the same gates as the dedicated endpoints, without a payload:
// churning or degrading health this way is rejected.
func (s *AccountService) UpdateCustomer(ctx context.Context, id uuid.UUID, patch account.CustomerPatch, actor *uuid.UUID) (*CustomerResponse, error) {
	if errs := account.ValidateCustomerPatch(patch); errs != nil {
		return nil, errs
	}

	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.CompanyName != nil {
		name := strings.TrimSpace(*patch.CompanyName)
		if !strings.EqualFold(name, customer.CompanyName) {
			if err := s.ensureNameAvailable(ctx, name); err != nil {
				return nil, err
			}
		}
	}

	changed := false
	if patch.AccountStatus != nil {
		moved, err := customer.ChangeAccountStatus(*patch.AccountStatus, actor)
		if err != nil {
			return nil, err
		}
		changed = moved
	}
	if patch.HealthStatus != nil {
		_, moved, err := customer.ChangeHealthStatus(*patch.HealthStatus, nil, actor)
		if err != nil {
			return nil, err
		}
		changed = moved || changed
	}
	edited, err := customer.Apply(patch, actor)
	if err != nil {
		return nil, err
	}
	changed = edited || changed

	if changed {
		if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
			return nil, err
		}
		s.dispatcher.Dispatch(ctx, customer)
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// ChangeAccountStatus moves the account. Churn requires churn_data, and the
// customer update and churn record insert commit together or not at all.
func (s *AccountService) ChangeAccountStatus(ctx context.Context, id uuid.UUID, req ChangeAccountStatusRequest, actor *uuid.UUID) (resp *StatusChangeResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "change_status",
		telemetry.SpanAttrCustomerID, id.String(),
		telemetry.SpanAttrAccountStatus, string(req.AccountStatus),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if !req.AccountStatus.IsValid() {
		return nil, shared.NewValidationError("account_status", "invalid account_status '"+string(req.AccountStatus)+"'")
	}
	if req.AccountStatus.IsChurned() && req.ChurnData == nil {
		return nil, shared.NewValidationError("churn_data", "churn_data required when account_status is Churn")
	}

	var (
		customer *account.Customer
		record   *account.ChurnRecord
		changed  bool
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		customer, err = repos.CustomerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if !req.AccountStatus.IsChurned() {
			changed, err = customer.ChangeAccountStatus(req.AccountStatus, actor)
			if err != nil || !changed {
				return err
			}
			return repos.CustomerRepo().SaveWithLock(ctx, customer)
		}

		record, err = customer.Churn(*req.ChurnData, actor, s.now())
		if err != nil {
			return err
		}
		changed = true
		exists, err := repos.ChurnRepo().ExistsForCustomer(ctx, customer.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("customer is already churned")
		}
		if err := repos.CustomerRepo().SaveWithLock(ctx, customer); err != nil {
			return err
		}
		return repos.ChurnRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, customer)

	if record != nil {
		logger.L(ctx).Info("Customer churned",
			zap.String("customer_id", customer.ID.String()),
			zap.String("primary_reason", string(record.PrimaryReason)),
		)
	}

	response := &StatusChangeResponse{Customer: ToCustomerResponse(customer), Changed: changed}
	if record != nil {
		r := ToChurnRecordResponse(record)
		response.ChurnRecord = &r
	}
	return response, nil
}

// ChangeHealthStatus moves the health status. A degradation requires a risk,
// which is inserted in the same transaction as the customer update.
func (s *AccountService) ChangeHealthStatus(ctx context.Context, id uuid.UUID, req ChangeHealthStatusRequest, actor *uuid.UUID) (*StatusChangeResponse, error) {
	var (
		customer *account.Customer
		risk     *account.Risk
		changed  bool
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		customer, err = repos.CustomerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		risk, changed, err = customer.ChangeHealthStatus(req.HealthStatus, req.Risk, actor)
		if err != nil || !changed {
			return err
		}
		if err := repos.CustomerRepo().SaveWithLock(ctx, customer); err != nil {
			return err
		}
		if risk != nil {
			return repos.RiskRepo().Save(ctx, risk)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, customer, riskAggregate(risk))

	response := &StatusChangeResponse{Customer: ToCustomerResponse(customer), Changed: changed}
	if risk != nil {
		r := ToRiskResponse(risk)
		response.Risk = &r
	}
	return response, nil
}

// GetChurnRecord returns the churn documentation of a customer
func (s *AccountService) GetChurnRecord(ctx context.Context, customerID uuid.UUID) (*ChurnRecordResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	record, err := s.churnRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	response := ToChurnRecordResponse(record)
	return &response, nil
}

func (s *AccountService) ensureNameAvailable(ctx context.Context, name string) error {
	exists, err := s.customerRepo.ExistsByCompanyName(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewAlreadyExistsError("Customer '" + name + "' already exists")
	}
	return nil
}

// riskAggregate keeps a nil *Risk from becoming a non-nil interface
func riskAggregate(r *account.Risk) shared.AggregateRoot {
	if r == nil {
		return nil
	}
	return r
}

func (q CustomerListFilter) toDomain() (account.CustomerFilter, error) {
	filter := account.CustomerFilter{Filter: pageFilter(q.Page, q.PageSize, q.OrderBy, q.OrderDir)}
	filter.Search = strings.TrimSpace(q.Search)

	errs := &shared.ValidationError{}
	if q.AccountStatus != "" {
		filter.AccountStatus = account.AccountStatus(q.AccountStatus)
		if !filter.AccountStatus.IsValid() {
			errs.Add("account_status", "invalid account_status '"+q.AccountStatus+"'")
		}
	}
	if q.HealthStatus != "" {
		filter.HealthStatus = account.HealthStatus(q.HealthStatus)
		if !filter.HealthStatus.IsValid() {
			errs.Add("health_status", "invalid health_status '"+q.HealthStatus+"'")
		}
	}
	filter.CSMOwnerID = parseOptionalUUID(errs, "csm_owner_id", q.CSMOwnerID)
	return filter, errs.ErrOrNil()
}

func pageFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir != "" {
		f.OrderDir = orderDir
	}
	return f
}

func parseOptionalUUID(errs *shared.ValidationError, field, raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		errs.Add(field, field+" must be a valid UUID")
		return nil
	}
	return &id
}
