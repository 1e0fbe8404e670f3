package pipeline

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/shared"
)

// AggregateTypeOpportunity is the aggregate type for opportunities
const AggregateTypeOpportunity = "Opportunity"

// Event type constants
const (
	EventTypeOpportunityCreated = "OpportunityCreated"
	EventTypeOpportunityUpdated = "OpportunityUpdated"
	EventTypeStageChanged       = "OpportunityStageChanged"
)

// OpportunityCreatedEvent is published when an opportunity is opened
type OpportunityCreatedEvent struct {
	shared.BaseDomainEvent
	OpportunityID uuid.UUID       `json:"opportunity_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Stage         Stage           `json:"stage"`
	Value         decimal.Decimal `json:"value"`
}

// NewOpportunityCreatedEvent creates a new OpportunityCreatedEvent
func NewOpportunityCreatedEvent(o *Opportunity, actor *uuid.UUID) *OpportunityCreatedEvent {
	return &OpportunityCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityCreated, AggregateTypeOpportunity, o.ID, actor),
		OpportunityID:   o.ID,
		CustomerID:      o.CustomerID,
		Stage:           o.Stage,
		Value:           o.Value,
	}
}

// OpportunityUpdatedEvent is published when edit-path fields change
type OpportunityUpdatedEvent struct {
	shared.BaseDomainEvent
	OpportunityID uuid.UUID `json:"opportunity_id"`
	Probability   int       `json:"probability"`
}

// NewOpportunityUpdatedEvent creates a new OpportunityUpdatedEvent
func NewOpportunityUpdatedEvent(o *Opportunity, actor *uuid.UUID) *OpportunityUpdatedEvent {
	return &OpportunityUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityUpdated, AggregateTypeOpportunity, o.ID, actor),
		OpportunityID:   o.ID,
		Probability:     o.Probability,
	}
}

// StageChangedEvent mirrors a stage log entry
type StageChangedEvent struct {
	shared.BaseDomainEvent
	OpportunityID uuid.UUID   `json:"opportunity_id"`
	CustomerID    uuid.UUID   `json:"customer_id"`
	Change        StageChange `json:"change"`
}

// NewStageChangedEvent creates a new StageChangedEvent
func NewStageChangedEvent(o *Opportunity, change StageChange, actor *uuid.UUID) *StageChangedEvent {
	return &StageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStageChanged, AggregateTypeOpportunity, o.ID, actor),
		OpportunityID:   o.ID,
		CustomerID:      o.CustomerID,
		Change:          change,
	}
}
