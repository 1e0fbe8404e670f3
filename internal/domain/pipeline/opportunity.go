package pipeline

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/domain/validation"
)

// Stage is a position in the sales pipeline
type Stage string

const (
	StageIdentified  Stage = "Identified"
	StageQualified   Stage = "Qualified"
	StageProposal    Stage = "Proposal"
	StageNegotiation Stage = "Negotiation"
	StageClosedWon   Stage = "Closed Won"
	StageClosedLost  Stage = "Closed Lost"
	StageHold        Stage = "Hold"
)

var stageProbability = map[Stage]int{
	StageIdentified:  10,
	StageQualified:   25,
	StageProposal:    50,
	StageNegotiation: 75,
	StageClosedWon:   100,
	StageClosedLost:  0,
	StageHold:        0,
}

// AllStages returns the stages in pipeline order
func AllStages() []Stage {
	return []Stage{StageIdentified, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost, StageHold}
}

// IsValid checks if the stage is a known value
func (s Stage) IsValid() bool {
	_, ok := stageProbability[s]
	return ok
}

// DefaultProbability returns the win probability implied by the stage
func (s Stage) DefaultProbability() int {
	return stageProbability[s]
}

// IsClosed reports whether the deal is decided
func (s Stage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// OpportunityType classifies the revenue motion
type OpportunityType string

const (
	TypeUpsell     OpportunityType = "Upsell"
	TypeCrossSell  OpportunityType = "Cross-sell"
	TypeExpansion  OpportunityType = "Expansion"
	TypeRenewal    OpportunityType = "Renewal"
	TypeNewProduct OpportunityType = "New Product"
)

// IsValid checks if the type is a known value
func (t OpportunityType) IsValid() bool {
	switch t {
	case TypeUpsell, TypeCrossSell, TypeExpansion, TypeRenewal, TypeNewProduct:
		return true
	}
	return false
}

// StageChange is one immutable entry of the stage audit trail
type StageChange struct {
	ID                uuid.UUID  `json:"id"`
	Sequence          int        `json:"sequence"`
	From              Stage      `json:"from"`
	To                Stage      `json:"to"`
	ChangedAt         time.Time  `json:"changed_at"`
	ProbabilityBefore int        `json:"probability_before"`
	ProbabilityAfter  int        `json:"probability_after"`
	ChangedBy         *uuid.UUID `json:"changed_by,omitempty"`
}

// Opportunity is a potential deal with an existing customer.
// Its stage log only grows; entries are never rewritten or reordered.
type Opportunity struct {
	shared.BaseAggregateRoot
	CustomerID        uuid.UUID
	Title             string
	Type              OpportunityType
	Stage             Stage
	Probability       int
	Value             decimal.Decimal
	OwnerID           *uuid.UUID
	ExpectedCloseDate *time.Time
	Notes             string
	CreatedBy         *uuid.UUID

	stageLog []StageChange
	pending  []StageChange
}

// OpportunityInput carries the fields of a new opportunity
type OpportunityInput struct {
	CustomerID        uuid.UUID       `json:"customer_id" validate:"required"`
	Title             string          `json:"title" validate:"notblank,max=255"`
	Type              OpportunityType `json:"type" validate:"omitempty,enum"`
	Stage             Stage           `json:"stage" validate:"omitempty,enum"`
	Probability       *int            `json:"probability" validate:"omitempty,gte=0,lte=100"`
	Value             decimal.Decimal `json:"value" validate:"gte=0"`
	OwnerID           *uuid.UUID      `json:"owner_id"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date"`
	Notes             string          `json:"notes"`
}

// ValidateOpportunityInput reports every invalid field
func ValidateOpportunityInput(in OpportunityInput) *shared.ValidationError {
	return validation.Struct(in)
}

// NewOpportunity creates an opportunity. Creation does not write a log entry.
func NewOpportunity(in OpportunityInput, actor *uuid.UUID) (*Opportunity, error) {
	if errs := ValidateOpportunityInput(in); errs != nil {
		return nil, errs
	}

	o := &Opportunity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        in.CustomerID,
		Title:             strings.TrimSpace(in.Title),
		Type:              in.Type,
		Stage:             in.Stage,
		Value:             in.Value,
		OwnerID:           in.OwnerID,
		ExpectedCloseDate: in.ExpectedCloseDate,
		Notes:             in.Notes,
		CreatedBy:         actor,
	}
	if o.Type == "" {
		o.Type = TypeUpsell
	}
	if o.Stage == "" {
		o.Stage = StageIdentified
	}
	o.Probability = o.Stage.DefaultProbability()
	if in.Probability != nil {
		o.Probability = *in.Probability
	}

	o.AddDomainEvent(NewOpportunityCreatedEvent(o, actor))
	return o, nil
}

// RestoreStageLog attaches the persisted log when rehydrating the aggregate
func (o *Opportunity) RestoreStageLog(log []StageChange) {
	o.stageLog = log
	o.pending = nil
}

// StageLog returns persisted and pending entries in order
func (o *Opportunity) StageLog() []StageChange {
	out := make([]StageChange, 0, len(o.stageLog)+len(o.pending))
	out = append(out, o.stageLog...)
	return append(out, o.pending...)
}

// PendingStageChanges returns entries that still have to be appended to storage
func (o *Opportunity) PendingStageChanges() []StageChange {
	return o.pending
}

// MarkStageChangesPersisted moves pending entries into the persisted log
func (o *Opportunity) MarkStageChangesPersisted() {
	o.stageLog = append(o.stageLog, o.pending...)
	o.pending = nil
}

func (o *Opportunity) nextSequence() int {
	n := len(o.stageLog) + len(o.pending)
	if n == 0 {
		return 1
	}
	last := o.StageLog()[n-1]
	return last.Sequence + 1
}

// MoveStage moves the opportunity and derives its probability from the stage.
// A move to the current stage changes nothing and logs nothing.
func (o *Opportunity) MoveStage(to Stage, actor *uuid.UUID, now time.Time) (bool, error) {
	if !to.IsValid() {
		return false, shared.NewValidationError("stage", "invalid stage '"+string(to)+"'")
	}
	if to == o.Stage {
		return false, nil
	}

	entry := StageChange{
		ID:                uuid.New(),
		Sequence:          o.nextSequence(),
		From:              o.Stage,
		To:                to,
		ChangedAt:         now,
		ProbabilityBefore: o.Probability,
		ProbabilityAfter:  to.DefaultProbability(),
		ChangedBy:         actor,
	}
	o.pending = append(o.pending, entry)
	o.Stage = to
	o.Probability = entry.ProbabilityAfter
	o.IncrementVersion()
	o.AddDomainEvent(NewStageChangedEvent(o, entry, actor))
	return true, nil
}

// OpportunityPatch is the edit path. A stage change here behaves exactly like
// MoveStage, and the stage mapping wins over a probability sent alongside it.
type OpportunityPatch struct {
	Title             *string          `json:"title" validate:"omitempty,notblank,max=255"`
	Type              *OpportunityType `json:"type" validate:"omitempty,enum"`
	Stage             *Stage           `json:"stage" validate:"omitempty,enum"`
	Probability       *int             `json:"probability" validate:"omitempty,gte=0,lte=100"`
	Value             *decimal.Decimal `json:"value" validate:"omitempty,gte=0"`
	OwnerID           *uuid.UUID       `json:"owner_id"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
	Notes             *string          `json:"notes"`
}

// Apply edits the opportunity
func (o *Opportunity) Apply(p OpportunityPatch, actor *uuid.UUID, now time.Time) (bool, error) {
	if errs := validation.Struct(p); errs != nil {
		return false, errs
	}

	var changed bool
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title != o.Title {
			o.Title = title
			changed = true
		}
	}
	if p.Type != nil && *p.Type != o.Type {
		o.Type = *p.Type
		changed = true
	}
	if p.Value != nil && !p.Value.Equal(o.Value) {
		o.Value = *p.Value
		changed = true
	}
	if p.OwnerID != nil && (o.OwnerID == nil || *o.OwnerID != *p.OwnerID) {
		v := *p.OwnerID
		o.OwnerID = &v
		changed = true
	}
	if p.ExpectedCloseDate != nil && (o.ExpectedCloseDate == nil || !o.ExpectedCloseDate.Equal(*p.ExpectedCloseDate)) {
		v := *p.ExpectedCloseDate
		o.ExpectedCloseDate = &v
		changed = true
	}
	if p.Notes != nil && *p.Notes != o.Notes {
		o.Notes = *p.Notes
		changed = true
	}

	moved := false
	if p.Stage != nil && *p.Stage != o.Stage {
		if _, err := o.MoveStage(*p.Stage, actor, now); err != nil {
			return false, err
		}
		moved = true
	}
	if !moved && p.Probability != nil && *p.Probability != o.Probability {
		o.Probability = *p.Probability
		changed = true
	}

	if changed {
		// MoveStage already bumped the version for its own write.
		if !moved {
			o.IncrementVersion()
		}
		o.AddDomainEvent(NewOpportunityUpdatedEvent(o, actor))
	}
	return changed || moved, nil
}
