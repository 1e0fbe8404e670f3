package account

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/domain/validation"
)

// ChurnType classifies the revenue loss
type ChurnType string

const (
	ChurnTypeLogo      ChurnType = "Logo Churn"
	ChurnTypePartial   ChurnType = "Partial Churn"
	ChurnTypeDowngrade ChurnType = "Downgrade"
)

// IsValid checks if the churn type is a known value
func (t ChurnType) IsValid() bool {
	switch t {
	case ChurnTypeLogo, ChurnTypePartial, ChurnTypeDowngrade:
		return true
	}
	return false
}

// ChurnReason is the primary cause of a churn
type ChurnReason string

const (
	ChurnReasonPrice           ChurnReason = "Price"
	ChurnReasonProductGaps     ChurnReason = "Product Gaps"
	ChurnReasonLowUsage        ChurnReason = "Low Usage"
	ChurnReasonSupportIssues   ChurnReason = "Support Issues"
	ChurnReasonBusinessClosure ChurnReason = "Business Closure"
	ChurnReasonCompetition     ChurnReason = "Competition"
	ChurnReasonInternalChange  ChurnReason = "Internal Change"
	ChurnReasonOther           ChurnReason = "Other"
)

// IsValid checks if the reason is a known value
func (r ChurnReason) IsValid() bool {
	switch r {
	case ChurnReasonPrice, ChurnReasonProductGaps, ChurnReasonLowUsage, ChurnReasonSupportIssues,
		ChurnReasonBusinessClosure, ChurnReasonCompetition, ChurnReasonInternalChange, ChurnReasonOther:
		return true
	}
	return false
}

// SecondaryReason is a contributing cause of a churn
type SecondaryReason string

const (
	SecondaryOnboardingIssues      SecondaryReason = "Onboarding issues"
	SecondaryFeatureComplexity     SecondaryReason = "Feature complexity"
	SecondaryLowROI                SecondaryReason = "Low ROI"
	SecondaryIntegrationChallenges SecondaryReason = "Integration challenges"
	SecondaryPoorCommunication     SecondaryReason = "Poor communication"
	SecondarySlowResponseTimes     SecondaryReason = "Slow response times"
	SecondaryMissingFeatures       SecondaryReason = "Missing features"
	SecondaryBudgetCuts            SecondaryReason = "Budget cuts"
)

// IsValid checks if the secondary reason is a known value
func (r SecondaryReason) IsValid() bool {
	switch r {
	case SecondaryOnboardingIssues, SecondaryFeatureComplexity, SecondaryLowROI, SecondaryIntegrationChallenges,
		SecondaryPoorCommunication, SecondarySlowResponseTimes, SecondaryMissingFeatures, SecondaryBudgetCuts:
		return true
	}
	return false
}

// Preventability records whether the churn could have been avoided
type Preventability string

const (
	PreventableYes       Preventability = "Yes"
	PreventableNo        Preventability = "No"
	PreventableUncertain Preventability = "Uncertain"
)

// IsValid checks if the value is known
func (p Preventability) IsValid() bool {
	return p == PreventableYes || p == PreventableNo || p == PreventableUncertain
}

// ChurnOwner is the team accountable for a churn
type ChurnOwner string

const (
	ChurnOwnerCS       ChurnOwner = "CS"
	ChurnOwnerSales    ChurnOwner = "Sales"
	ChurnOwnerProduct  ChurnOwner = "Product"
	ChurnOwnerSupport  ChurnOwner = "Support"
	ChurnOwnerExternal ChurnOwner = "External"
)

// IsValid checks if the owner is known
func (o ChurnOwner) IsValid() bool {
	switch o {
	case ChurnOwnerCS, ChurnOwnerSales, ChurnOwnerProduct, ChurnOwnerSupport, ChurnOwnerExternal:
		return true
	}
	return false
}

// ChurnInput is the documentation required to churn an account
type ChurnInput struct {
	ChurnType              ChurnType         `json:"churn_type" validate:"required,enum"`
	EffectiveChurnDate     *time.Time        `json:"effective_churn_date" validate:"required"`
	RevenueImpact          *decimal.Decimal  `json:"revenue_impact" validate:"required,gte=0"`
	PrimaryReason          ChurnReason       `json:"primary_reason" validate:"required,enum"`
	PrimaryReasonOther     string            `json:"primary_reason_other" validate:"required_if=PrimaryReason Other,max=500"`
	SecondaryReasons       []SecondaryReason `json:"secondary_reasons" validate:"omitempty,dive,enum"`
	CouldHaveBeenPrevented Preventability    `json:"could_have_been_prevented" validate:"required,enum"`
	OwnerResponsible       ChurnOwner        `json:"owner_responsible" validate:"required,enum"`
	ContractEndDate        *time.Time        `json:"contract_end_date"`
	ActionTakenBeforeChurn string            `json:"action_taken_before_churn"`
	CustomerFeedback       string            `json:"customer_feedback"`
	InternalNotes          string            `json:"internal_notes"`
}

// ValidateChurnInput reports every missing or invalid churn field
func ValidateChurnInput(in ChurnInput) *shared.ValidationError {
	errs := validation.Struct(in)
	if errs == nil {
		errs = &shared.ValidationError{}
	}
	// required_if accepts whitespace; a blank explanation is still missing.
	if in.PrimaryReason == ChurnReasonOther && in.PrimaryReasonOther != "" && strings.TrimSpace(in.PrimaryReasonOther) == "" {
		errs.Add("primary_reason_other", "primary_reason_other required")
	}
	if !errs.HasErrors() {
		return nil
	}
	return errs
}

// ChurnRecord documents why an account was lost. It is immutable once written.
type ChurnRecord struct {
	shared.BaseEntity
	CustomerID             uuid.UUID
	ChurnType              ChurnType
	EffectiveChurnDate     time.Time
	RevenueImpact          decimal.Decimal
	PrimaryReason          ChurnReason
	PrimaryReasonOther     string
	SecondaryReasons       []SecondaryReason
	CouldHaveBeenPrevented Preventability
	OwnerResponsible       ChurnOwner
	ContractEndDate        *time.Time
	ActionTakenBeforeChurn string
	CustomerFeedback       string
	InternalNotes          string
	ARRAtChurn             decimal.Decimal
	ChurnedAt              time.Time
	RecordedBy             *uuid.UUID
}

// NewChurnRecord builds the churn record for a customer from validated input
func NewChurnRecord(c *Customer, in ChurnInput, actor *uuid.UUID, now time.Time) (*ChurnRecord, error) {
	if errs := ValidateChurnInput(in); errs != nil {
		out := &shared.ValidationError{}
		out.Merge("churn_data", errs)
		return nil, out
	}

	secondary := make([]SecondaryReason, 0, len(in.SecondaryReasons))
	for _, r := range in.SecondaryReasons {
		if !slices.Contains(secondary, r) {
			secondary = append(secondary, r)
		}
	}
	other := ""
	if in.PrimaryReason == ChurnReasonOther {
		other = strings.TrimSpace(in.PrimaryReasonOther)
	}

	return &ChurnRecord{
		BaseEntity:             shared.NewBaseEntity(),
		CustomerID:             c.ID,
		ChurnType:              in.ChurnType,
		EffectiveChurnDate:     *in.EffectiveChurnDate,
		RevenueImpact:          *in.RevenueImpact,
		PrimaryReason:          in.PrimaryReason,
		PrimaryReasonOther:     other,
		SecondaryReasons:       secondary,
		CouldHaveBeenPrevented: in.CouldHaveBeenPrevented,
		OwnerResponsible:       in.OwnerResponsible,
		ContractEndDate:        in.ContractEndDate,
		ActionTakenBeforeChurn: in.ActionTakenBeforeChurn,
		CustomerFeedback:       in.CustomerFeedback,
		InternalNotes:          in.InternalNotes,
		ARRAtChurn:             c.ARR,
		ChurnedAt:              now,
		RecordedBy:             actor,
	}, nil
}
