package account

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/domain/validation"
)

// RiskCategory is the top-level classification of a risk
type RiskCategory string

const (
	RiskCategoryProductUsage RiskCategory = "Product Usage Risks"
	RiskCategoryOnboarding   RiskCategory = "Onboarding Risks"
	RiskCategorySupport      RiskCategory = "Support/Operations Risks"
	RiskCategoryRelationship RiskCategory = "Relationship Risks"
	RiskCategoryCommercial   RiskCategory = "Commercial/Billing Risks"
	RiskCategoryStrategic    RiskCategory = "Strategic Risks"
	RiskCategorySentiment    RiskCategory = "Sentiment/Gut Feel Risks"
)

var riskSubcategories = map[RiskCategory][]string{
	RiskCategoryProductUsage: {"Low Login Frequency", "Short Session Duration", "Inactive Users", "Low Feature Adoption"},
	RiskCategoryOnboarding:   {"Delayed Milestones", "Low Session Attendance", "Poor Certification Rate"},
	RiskCategorySupport:      {"SLA Breaches", "High Unresolved Ticket Volume", "Critical Bugs"},
	RiskCategoryRelationship: {"Stakeholder Churn", "Disengaged POC", "Champion Left Organization"},
	RiskCategoryCommercial:   {"Renewal Concerns Expressed", "Budget Constraints", "Pricing Disputes"},
	RiskCategoryStrategic:    {"Product Misalignment", "Competitor Evaluation", "Changing Requirements"},
	RiskCategorySentiment:    {"Negative Feedback", "Lack of Engagement", "Dissatisfaction Signals"},
}

// AllRiskCategories returns the categories in display order
func AllRiskCategories() []RiskCategory {
	return []RiskCategory{
		RiskCategoryProductUsage,
		RiskCategoryOnboarding,
		RiskCategorySupport,
		RiskCategoryRelationship,
		RiskCategoryCommercial,
		RiskCategoryStrategic,
		RiskCategorySentiment,
	}
}

// IsValid checks if the category is a known value
func (c RiskCategory) IsValid() bool {
	_, ok := riskSubcategories[c]
	return ok
}

// Subcategories returns the closed subcategory set of the category
func (c RiskCategory) Subcategories() []string {
	return slices.Clone(riskSubcategories[c])
}

// Allows reports whether sub belongs to the category
func (c RiskCategory) Allows(sub string) bool {
	return slices.Contains(riskSubcategories[c], sub)
}

// RiskSeverity ranks the impact of a risk
type RiskSeverity string

const (
	RiskSeverityLow      RiskSeverity = "Low"
	RiskSeverityMedium   RiskSeverity = "Medium"
	RiskSeverityHigh     RiskSeverity = "High"
	RiskSeverityCritical RiskSeverity = "Critical"
)

// IsValid checks if the severity is a known value
func (s RiskSeverity) IsValid() bool {
	switch s {
	case RiskSeverityLow, RiskSeverityMedium, RiskSeverityHigh, RiskSeverityCritical:
		return true
	}
	return false
}

// RiskStatus tracks mitigation progress
type RiskStatus string

const (
	RiskStatusOpen       RiskStatus = "Open"
	RiskStatusInProgress RiskStatus = "In Progress"
	RiskStatusMonitoring RiskStatus = "Monitoring"
	RiskStatusResolved   RiskStatus = "Resolved"
	RiskStatusClosed     RiskStatus = "Closed"
)

// IsValid checks if the status is a known value
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusOpen, RiskStatusInProgress, RiskStatusMonitoring, RiskStatusResolved, RiskStatusClosed:
		return true
	}
	return false
}

// IsOpen reports whether the risk still needs attention
func (s RiskStatus) IsOpen() bool {
	return s != RiskStatusResolved && s != RiskStatusClosed
}

// RiskSource records how a risk came to exist
type RiskSource string

const (
	RiskSourceManual       RiskSource = "manual"
	RiskSourceHealthChange RiskSource = "health_change"
)

// Risk is a documented concern about a customer account
type Risk struct {
	shared.BaseAggregateRoot
	CustomerID       uuid.UUID
	Title            string
	Description      string
	Category         RiskCategory
	Subcategory      string
	Severity         RiskSeverity
	Status           RiskStatus
	AssignedToID     *uuid.UUID
	RevenueImpact    *decimal.Decimal
	ChurnProbability *int
	MitigationPlan   string
	DueDate          *time.Time
	Source           RiskSource
	ResolvedAt       *time.Time
	CreatedBy        *uuid.UUID
}

// RiskInput carries the fields of a new risk
type RiskInput struct {
	Title            string           `json:"title" validate:"notblank,max=255"`
	Description      string           `json:"description"`
	Category         RiskCategory     `json:"category" validate:"required,enum"`
	Subcategory      string           `json:"subcategory" validate:"notblank"`
	Severity         RiskSeverity     `json:"severity" validate:"required,enum"`
	Status           RiskStatus       `json:"status" validate:"omitempty,enum"`
	AssignedToID     *uuid.UUID       `json:"assigned_to_id"`
	RevenueImpact    *decimal.Decimal `json:"revenue_impact" validate:"omitempty,gte=0"`
	ChurnProbability *int             `json:"churn_probability" validate:"omitempty,gte=0,lte=100"`
	MitigationPlan   string           `json:"mitigation_plan"`
	DueDate          *time.Time       `json:"due_date"`
}

// ValidateRiskInput checks a directly created risk
func ValidateRiskInput(in RiskInput) *shared.ValidationError {
	errs := validation.Struct(in)
	if errs == nil {
		errs = &shared.ValidationError{}
	}
	checkSubcategory(errs, in.Category, in.Subcategory)
	if !errs.HasErrors() {
		return nil
	}
	return errs
}

// ValidateHealthGateRisk checks a risk documenting a health degradation.
// On top of the direct-creation rules, it needs a description and an assignee.
func ValidateHealthGateRisk(in RiskInput) *shared.ValidationError {
	errs := ValidateRiskInput(in)
	if errs == nil {
		errs = &shared.ValidationError{}
	}
	if strings.TrimSpace(in.Description) == "" {
		errs.Add("description", "description required")
	}
	if in.AssignedToID == nil || *in.AssignedToID == uuid.Nil {
		errs.Add("assigned_to_id", "assigned_to_id required")
	}
	if !errs.HasErrors() {
		return nil
	}
	return errs
}

func checkSubcategory(errs *shared.ValidationError, category RiskCategory, sub string) {
	if !category.IsValid() || strings.TrimSpace(sub) == "" || errs.Has("subcategory") {
		return
	}
	if !category.Allows(sub) {
		errs.Add("subcategory", fmt.Sprintf("subcategory '%s' does not belong to category '%s'", sub, category))
	}
}

// NewRisk creates a risk for a customer
func NewRisk(customerID uuid.UUID, in RiskInput, source RiskSource, actor *uuid.UUID) (*Risk, error) {
	if errs := ValidateRiskInput(in); errs != nil {
		return nil, errs
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer_id", "customer_id required")
	}

	r := &Risk{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Category:          in.Category,
		Subcategory:       in.Subcategory,
		Severity:          in.Severity,
		Status:            in.Status,
		AssignedToID:      in.AssignedToID,
		RevenueImpact:     in.RevenueImpact,
		ChurnProbability:  in.ChurnProbability,
		MitigationPlan:    in.MitigationPlan,
		DueDate:           in.DueDate,
		Source:            source,
		CreatedBy:         actor,
	}
	if r.Status == "" {
		r.Status = RiskStatusOpen
	}
	if !r.Status.IsOpen() {
		now := time.Now()
		r.ResolvedAt = &now
	}

	r.AddDomainEvent(NewRiskCreatedEvent(r, actor))
	return r, nil
}

// RiskPatch is a partial risk update
type RiskPatch struct {
	Title            *string          `json:"title" validate:"omitempty,notblank,max=255"`
	Description      *string          `json:"description"`
	Category         *RiskCategory    `json:"category" validate:"omitempty,enum"`
	Subcategory      *string          `json:"subcategory" validate:"omitempty,notblank"`
	Severity         *RiskSeverity    `json:"severity" validate:"omitempty,enum"`
	Status           *RiskStatus      `json:"status" validate:"omitempty,enum"`
	AssignedToID     *uuid.UUID       `json:"assigned_to_id"`
	RevenueImpact    *decimal.Decimal `json:"revenue_impact" validate:"omitempty,gte=0"`
	ChurnProbability *int             `json:"churn_probability" validate:"omitempty,gte=0,lte=100"`
	MitigationPlan   *string          `json:"mitigation_plan"`
	DueDate          *time.Time       `json:"due_date"`
}

// Apply updates the risk. Category and subcategory are checked as a pair
// against the resulting values. The owning customer is never affected.
func (r *Risk) Apply(p RiskPatch, actor *uuid.UUID) (bool, error) {
	errs := validation.Struct(p)
	if errs == nil {
		errs = &shared.ValidationError{}
	}
	category, sub := r.Category, r.Subcategory
	if p.Category != nil {
		category = *p.Category
	}
	if p.Subcategory != nil {
		sub = *p.Subcategory
	}
	if p.Category != nil || p.Subcategory != nil {
		checkSubcategory(errs, category, sub)
	}
	if errs.HasErrors() {
		return false, errs
	}

	oldStatus := r.Status
	var changed bool
	changed = set(&r.Title, p.Title) || changed
	changed = set(&r.Description, p.Description) || changed
	changed = set(&r.Category, p.Category) || changed
	changed = set(&r.Subcategory, p.Subcategory) || changed
	changed = set(&r.Severity, p.Severity) || changed
	changed = set(&r.Status, p.Status) || changed
	changed = setRef(&r.AssignedToID, p.AssignedToID) || changed
	if p.RevenueImpact != nil && (r.RevenueImpact == nil || !r.RevenueImpact.Equal(*p.RevenueImpact)) {
		v := *p.RevenueImpact
		r.RevenueImpact = &v
		changed = true
	}
	if p.ChurnProbability != nil && (r.ChurnProbability == nil || *r.ChurnProbability != *p.ChurnProbability) {
		v := *p.ChurnProbability
		r.ChurnProbability = &v
		changed = true
	}
	changed = set(&r.MitigationPlan, p.MitigationPlan) || changed
	changed = setDate(&r.DueDate, p.DueDate) || changed

	if !changed {
		return false, nil
	}
	switch {
	case oldStatus.IsOpen() && !r.Status.IsOpen():
		now := time.Now()
		r.ResolvedAt = &now
	case !oldStatus.IsOpen() && r.Status.IsOpen():
		r.ResolvedAt = nil
	}
	r.IncrementVersion()
	r.AddDomainEvent(NewRiskUpdatedEvent(r, oldStatus, actor))
	return true, nil
}
