// Package pipeline orchestrates opportunity creation, edits and stage moves.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/application/event"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/pipeline"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/infrastructure/logger"
	"github.com/cshub/backend/internal/infrastructure/telemetry"
)

// OpportunityService handles opportunity operations
type OpportunityService struct {
	opportunityRepo pipeline.OpportunityRepository
	customerRepo    account.CustomerRepository
	scope           TransactionScope
	dispatcher      *event.Dispatcher
	now             func() time.Time
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(
	opportunityRepo pipeline.OpportunityRepository,
	customerRepo account.CustomerRepository,
	scope TransactionScope,
	dispatcher *event.Dispatcher,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		customerRepo:    customerRepo,
		scope:           scope,
		dispatcher:      dispatcher,
		now:             time.Now,
	}
}

// Create opens an opportunity for an existing customer
func (s *OpportunityService) Create(ctx context.Context, in pipeline.OpportunityInput, actor *uuid.UUID) (*OpportunityResponse, error) {
	if errs := pipeline.ValidateOpportunityInput(in); errs != nil {
		return nil, errs
	}
	if _, err := s.customerRepo.FindByID(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	o, err := pipeline.NewOpportunity(in, actor)
	if err != nil {
		return nil, err
	}
	if err := s.opportunityRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, o)

	response := toDetailResponse(o)
	return &response, nil
}

// Get returns an opportunity with its stage log
func (s *OpportunityService) Get(ctx context.Context, id uuid.UUID) (*OpportunityResponse, error) {
	o, err := s.opportunityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := toDetailResponse(o)
	return &response, nil
}

// List returns one page of opportunities
func (s *OpportunityService) List(ctx context.Context, q OpportunityListFilter) (*shared.Paginated[OpportunityResponse], error) {
	filter := pipeline.OpportunityFilter{Filter: shared.DefaultFilter()}
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	filter.Search = strings.TrimSpace(q.Search)

	errs := &shared.ValidationError{}
	if q.CustomerID != "" {
		id, err := uuid.Parse(q.CustomerID)
		if err != nil {
			errs.Add("customer_id", "customer_id must be a valid UUID")
		} else {
			filter.CustomerID = &id
		}
	}
	if q.Stage != "" {
		filter.Stage = pipeline.Stage(q.Stage)
		if !filter.Stage.IsValid() {
			errs.Add("stage", "invalid stage '"+q.Stage+"'")
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	items, err := s.opportunityRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.opportunityRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]OpportunityResponse, len(items))
	for i := range items {
		out[i] = ToOpportunityResponse(&items[i])
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}

// MoveStage transitions the opportunity; the stage write and its log entry
// commit together
func (s *OpportunityService) MoveStage(ctx context.Context, id uuid.UUID, to pipeline.Stage, actor *uuid.UUID) (*OpportunityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "opportunity", "move_stage",
		telemetry.SpanAttrOpportunityID, id.String(),
		telemetry.SpanAttrStage, string(to),
	)
	defer span.End()

	resp, err := s.mutate(ctx, id, func(o *pipeline.Opportunity) (bool, error) {
		from := o.Stage
		moved, err := o.MoveStage(to, actor, s.now())
		if moved {
			logger.L(ctx).Info("Opportunity stage changed",
				zap.String("opportunity_id", o.ID.String()),
				zap.String("from", string(from)),
				zap.String("to", string(to)),
			)
		}
		return moved, err
	})
	telemetry.RecordError(span, err)
	return resp, err
}

// Update applies the edit path. A stage change in the patch is logged like MoveStage.
func (s *OpportunityService) Update(ctx context.Context, id uuid.UUID, patch pipeline.OpportunityPatch, actor *uuid.UUID) (*OpportunityResponse, error) {
	return s.mutate(ctx, id, func(o *pipeline.Opportunity) (bool, error) {
		return o.Apply(patch, actor, s.now())
	})
}

// StageHistory returns the stage log ordered by sequence
func (s *OpportunityService) StageHistory(ctx context.Context, id uuid.UUID) ([]pipeline.StageChange, error) {
	if _, err := s.opportunityRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.opportunityRepo.StageHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []pipeline.StageChange{}
	}
	return history, nil
}

func (s *OpportunityService) mutate(ctx context.Context, id uuid.UUID, fn func(o *pipeline.Opportunity) (bool, error)) (*OpportunityResponse, error) {
	var o *pipeline.Opportunity
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.OpportunityRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		changed, err := fn(o)
		if err != nil || !changed {
			return err
		}
		return repos.OpportunityRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, o)

	response := toDetailResponse(o)
	return &response, nil
}
