package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/cshub/backend/internal/domain/shared"
)

// OpportunityFilter narrows opportunity listings
type OpportunityFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Stage      Stage
}

// OpportunityRepository persists opportunities and their stage logs
type OpportunityRepository interface {
	// FindByID loads the opportunity with its full stage log
	FindByID(ctx context.Context, id uuid.UUID) (*Opportunity, error)

	// FindAll lists opportunities without their logs
	FindAll(ctx context.Context, filter OpportunityFilter) ([]Opportunity, error)

	Count(ctx context.Context, filter OpportunityFilter) (int64, error)

	// Save inserts a new opportunity
	Save(ctx context.Context, o *Opportunity) error

	// SaveWithLock updates the opportunity with a version check and appends
	// its pending stage changes. Callers run it inside a transaction scope.
	SaveWithLock(ctx context.Context, o *Opportunity) error

	// StageHistory returns the log ordered by sequence
	StageHistory(ctx context.Context, opportunityID uuid.UUID) ([]StageChange, error)
}
