package account

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/application/event"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/infrastructure/logger"
)

// RiskService manages risks documented directly, outside the health gate
type RiskService struct {
	riskRepo     account.RiskRepository
	customerRepo account.CustomerRepository
	dispatcher   *event.Dispatcher
}

// NewRiskService creates a new RiskService
func NewRiskService(riskRepo account.RiskRepository, customerRepo account.CustomerRepository, dispatcher *event.Dispatcher) *RiskService {
	return &RiskService{
		riskRepo:     riskRepo,
		customerRepo: customerRepo,
		dispatcher:   dispatcher,
	}
}

// Create documents a risk against an existing customer. The customer's
// health status is not changed.
func (s *RiskService) Create(ctx context.Context, req CreateRiskRequest, actor *uuid.UUID) (*RiskResponse, error) {
	errs := account.ValidateRiskInput(req.RiskInput)
	if req.CustomerID == uuid.Nil {
		if errs == nil {
			errs = &shared.ValidationError{}
		}
		errs.Add("customer_id", "customer_id required")
	}
	if errs != nil {
		return nil, errs
	}
	if _, err := s.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	risk, err := account.NewRisk(req.CustomerID, req.RiskInput, account.RiskSourceManual, actor)
	if err != nil {
		return nil, err
	}
	if err := s.riskRepo.Save(ctx, risk); err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, risk)

	logger.L(ctx).Info("Risk created",
		zap.String("risk_id", risk.ID.String()),
		zap.String("customer_id", risk.CustomerID.String()),
		zap.String("severity", string(risk.Severity)),
	)
	response := ToRiskResponse(risk)
	return &response, nil
}

// Get retrieves a risk by ID
func (s *RiskService) Get(ctx context.Context, id uuid.UUID) (*RiskResponse, error) {
	risk, err := s.riskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRiskResponse(risk)
	return &response, nil
}

// List returns one page of risks
func (s *RiskService) List(ctx context.Context, q RiskListFilter) (*shared.Paginated[RiskResponse], error) {
	filter := account.RiskFilter{Filter: pageFilter(q.Page, q.PageSize, "", "")}
	errs := &shared.ValidationError{}
	filter.CustomerID = parseOptionalUUID(errs, "customer_id", q.CustomerID)
	if q.Status != "" {
		filter.Status = account.RiskStatus(q.Status)
		if !filter.Status.IsValid() {
			errs.Add("status", "invalid status '"+q.Status+"'")
		}
	}
	if q.Severity != "" {
		filter.Severity = account.RiskSeverity(q.Severity)
		if !filter.Severity.IsValid() {
			errs.Add("severity", "invalid severity '"+q.Severity+"'")
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	risks, err := s.riskRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.riskRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]RiskResponse, len(risks))
	for i := range risks {
		items[i] = ToRiskResponse(&risks[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update edits a risk. Only the risk changes; its customer is untouched.
func (s *RiskService) Update(ctx context.Context, id uuid.UUID, patch account.RiskPatch, actor *uuid.UUID) (*RiskResponse, error) {
	risk, err := s.riskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := risk.Apply(patch, actor)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.riskRepo.SaveWithLock(ctx, risk); err != nil {
			return nil, err
		}
		s.dispatcher.Dispatch(ctx, risk)
	}
	response := ToRiskResponse(risk)
	return &response, nil
}
