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

// Default values for new accounts
const (
	DefaultHealthScore = 50
)

// Stakeholder is a contact person at the customer
type Stakeholder struct {
	FullName  string `json:"full_name" validate:"notblank,max=200"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=50"`
	JobTitle  string `json:"job_title,omitempty" validate:"omitempty,max=200"`
	RoleType  string `json:"role_type,omitempty" validate:"omitempty,max=100"`
	IsPrimary bool   `json:"is_primary"`
}

// Customer is the account aggregate root.
// AccountStatus = Churn holds exactly when a ChurnRecord exists for the customer.
type Customer struct {
	shared.BaseAggregateRoot
	CompanyName              string
	Website                  string
	Industry                 string
	Region                   Region
	AccountStatus            AccountStatus
	HealthStatus             HealthStatus
	HealthScore              int
	PlanType                 PlanType
	OnboardingStatus         OnboardingStatus
	ARR                      decimal.Decimal
	OneTimeSetupCost         decimal.Decimal
	QuarterlyConsumptionCost decimal.Decimal
	ContractStartDate        *time.Time
	ContractEndDate          *time.Time
	RenewalDate              *time.Time
	GoLiveDate               *time.Time
	LastActivityDate         *time.Time
	ActiveUsers              int
	TotalLicensedUsers       int
	CallsProcessed           int64
	CSMOwnerID               *uuid.UUID
	AMOwnerID                *uuid.UUID
	Stakeholders             []Stakeholder
	ProductsPurchased        []string
	Tags                     []string
	CreatedBy                *uuid.UUID
}

// CustomerInput carries the fields of a new customer
type CustomerInput struct {
	CompanyName              string           `json:"company_name" validate:"notblank,max=255"`
	Website                  string           `json:"website" validate:"omitempty,max=255"`
	Industry                 string           `json:"industry" validate:"omitempty,max=100"`
	Region                   Region           `json:"region" validate:"omitempty,enum"`
	AccountStatus            AccountStatus    `json:"account_status" validate:"omitempty,enum"`
	HealthStatus             HealthStatus     `json:"health_status" validate:"omitempty,enum"`
	HealthScore              *int             `json:"health_score" validate:"omitempty,gte=0,lte=100"`
	PlanType                 PlanType         `json:"plan_type" validate:"omitempty,enum"`
	OnboardingStatus         OnboardingStatus `json:"onboarding_status" validate:"omitempty,enum"`
	ARR                      decimal.Decimal  `json:"arr" validate:"gte=0"`
	OneTimeSetupCost         decimal.Decimal  `json:"one_time_setup_cost" validate:"gte=0"`
	QuarterlyConsumptionCost decimal.Decimal  `json:"quarterly_consumption_cost" validate:"gte=0"`
	ContractStartDate        *time.Time       `json:"contract_start_date"`
	ContractEndDate          *time.Time       `json:"contract_end_date"`
	RenewalDate              *time.Time       `json:"renewal_date"`
	GoLiveDate               *time.Time       `json:"go_live_date"`
	ActiveUsers              int              `json:"active_users" validate:"gte=0"`
	TotalLicensedUsers       int              `json:"total_licensed_users" validate:"gte=0"`
	CallsProcessed           int64            `json:"calls_processed" validate:"gte=0"`
	CSMOwnerID               *uuid.UUID       `json:"csm_owner_id"`
	AMOwnerID                *uuid.UUID       `json:"am_owner_id"`
	Stakeholders             []Stakeholder    `json:"stakeholders" validate:"omitempty,dive"`
	ProductsPurchased        []string         `json:"products_purchased"`
	Tags                     []string         `json:"tags"`
}

// ValidateCustomerInput checks a new customer record and reports every invalid field
func ValidateCustomerInput(in CustomerInput) *shared.ValidationError {
	errs := validation.Struct(in)
	if errs == nil {
		errs = &shared.ValidationError{}
	}
	if in.AccountStatus.IsChurned() {
		errs.Add("account_status", "account_status cannot be Churn on creation; record churn through the churn workflow")
	}
	if !errs.HasErrors() {
		return nil
	}
	return errs
}

// NewCustomer creates a customer from validated input
func NewCustomer(in CustomerInput, actor *uuid.UUID) (*Customer, error) {
	if errs := ValidateCustomerInput(in); errs != nil {
		return nil, errs
	}

	c := &Customer{
		BaseAggregateRoot:        shared.NewBaseAggregateRoot(),
		CompanyName:              strings.TrimSpace(in.CompanyName),
		Website:                  in.Website,
		Industry:                 in.Industry,
		Region:                   in.Region,
		AccountStatus:            in.AccountStatus,
		HealthStatus:             in.HealthStatus,
		HealthScore:              DefaultHealthScore,
		PlanType:                 in.PlanType,
		OnboardingStatus:         in.OnboardingStatus,
		ARR:                      in.ARR,
		OneTimeSetupCost:         in.OneTimeSetupCost,
		QuarterlyConsumptionCost: in.QuarterlyConsumptionCost,
		ContractStartDate:        in.ContractStartDate,
		ContractEndDate:          in.ContractEndDate,
		RenewalDate:              in.RenewalDate,
		GoLiveDate:               in.GoLiveDate,
		ActiveUsers:              in.ActiveUsers,
		TotalLicensedUsers:       in.TotalLicensedUsers,
		CallsProcessed:           in.CallsProcessed,
		CSMOwnerID:               in.CSMOwnerID,
		AMOwnerID:                in.AMOwnerID,
		Stakeholders:             slices.Clone(in.Stakeholders),
		ProductsPurchased:        uniqueStrings(in.ProductsPurchased),
		Tags:                     uniqueStrings(in.Tags),
		CreatedBy:                actor,
	}
	if c.AccountStatus == "" {
		c.AccountStatus = AccountStatusOnboarding
	}
	if c.HealthStatus == "" {
		c.HealthStatus = HealthStatusHealthy
	}
	if c.OnboardingStatus == "" {
		c.OnboardingStatus = OnboardingNotStarted
	}
	if in.HealthScore != nil {
		c.HealthScore = *in.HealthScore
	}

	c.AddDomainEvent(NewCustomerCreatedEvent(c, actor))
	return c, nil
}

// CustomerPatch is a partial update. Nil fields are left untouched.
// AccountStatus and HealthStatus are routed through their state machines
// by the application layer and are ignored by Apply.
type CustomerPatch struct {
	CompanyName              *string           `json:"company_name" validate:"omitempty,notblank,max=255"`
	Website                  *string           `json:"website" validate:"omitempty,max=255"`
	Industry                 *string           `json:"industry" validate:"omitempty,max=100"`
	Region                   *Region           `json:"region" validate:"omitempty,enum"`
	AccountStatus            *AccountStatus    `json:"account_status" validate:"omitempty,enum"`
	HealthStatus             *HealthStatus     `json:"health_status" validate:"omitempty,enum"`
	HealthScore              *int              `json:"health_score" validate:"omitempty,gte=0,lte=100"`
	PlanType                 *PlanType         `json:"plan_type" validate:"omitempty,enum"`
	OnboardingStatus         *OnboardingStatus `json:"onboarding_status" validate:"omitempty,enum"`
	ARR                      *decimal.Decimal  `json:"arr" validate:"omitempty,gte=0"`
	OneTimeSetupCost         *decimal.Decimal  `json:"one_time_setup_cost" validate:"omitempty,gte=0"`
	QuarterlyConsumptionCost *decimal.Decimal  `json:"quarterly_consumption_cost" validate:"omitempty,gte=0"`
	ContractStartDate        *time.Time        `json:"contract_start_date"`
	ContractEndDate          *time.Time        `json:"contract_end_date"`
	RenewalDate              *time.Time        `json:"renewal_date"`
	GoLiveDate               *time.Time        `json:"go_live_date"`
	LastActivityDate         *time.Time        `json:"last_activity_date"`
	ActiveUsers              *int              `json:"active_users" validate:"omitempty,gte=0"`
	TotalLicensedUsers       *int              `json:"total_licensed_users" validate:"omitempty,gte=0"`
	CallsProcessed           *int64            `json:"calls_processed" validate:"omitempty,gte=0"`
	CSMOwnerID               *uuid.UUID        `json:"csm_owner_id"`
	AMOwnerID                *uuid.UUID        `json:"am_owner_id"`
	Stakeholders             *[]Stakeholder    `json:"stakeholders" validate:"omitempty,dive"`
	ProductsPurchased        *[]string         `json:"products_purchased"`
	Tags                     *[]string         `json:"tags"`
}

// ValidateCustomerPatch checks every supplied field
func ValidateCustomerPatch(p CustomerPatch) *shared.ValidationError {
	return validation.Struct(p)
}

// Apply copies the supplied plain fields onto the customer.
// It returns false when the patch matches the current state, in which case
// neither the version nor the event stream changes.
func (c *Customer) Apply(p CustomerPatch, actor *uuid.UUID) (bool, error) {
	if errs := ValidateCustomerPatch(p); errs != nil {
		return false, errs
	}

	var changed bool
	if p.CompanyName != nil {
		name := strings.TrimSpace(*p.CompanyName)
		changed = set(&c.CompanyName, &name) || changed
	}
	changed = set(&c.Website, p.Website) || changed
	changed = set(&c.Industry, p.Industry) || changed
	changed = set(&c.Region, p.Region) || changed
	changed = set(&c.HealthScore, p.HealthScore) || changed
	changed = set(&c.PlanType, p.PlanType) || changed
	changed = set(&c.OnboardingStatus, p.OnboardingStatus) || changed
	changed = setDecimal(&c.ARR, p.ARR) || changed
	changed = setDecimal(&c.OneTimeSetupCost, p.OneTimeSetupCost) || changed
	changed = setDecimal(&c.QuarterlyConsumptionCost, p.QuarterlyConsumptionCost) || changed
	changed = setDate(&c.ContractStartDate, p.ContractStartDate) || changed
	changed = setDate(&c.ContractEndDate, p.ContractEndDate) || changed
	changed = setDate(&c.RenewalDate, p.RenewalDate) || changed
	changed = setDate(&c.GoLiveDate, p.GoLiveDate) || changed
	changed = setDate(&c.LastActivityDate, p.LastActivityDate) || changed
	changed = set(&c.ActiveUsers, p.ActiveUsers) || changed
	changed = set(&c.TotalLicensedUsers, p.TotalLicensedUsers) || changed
	changed = set(&c.CallsProcessed, p.CallsProcessed) || changed
	changed = setRef(&c.CSMOwnerID, p.CSMOwnerID) || changed
	changed = setRef(&c.AMOwnerID, p.AMOwnerID) || changed
	if p.Stakeholders != nil && !slices.Equal(c.Stakeholders, *p.Stakeholders) {
		c.Stakeholders = slices.Clone(*p.Stakeholders)
		changed = true
	}
	if p.ProductsPurchased != nil {
		products := uniqueStrings(*p.ProductsPurchased)
		if !slices.Equal(c.ProductsPurchased, products) {
			c.ProductsPurchased = products
			changed = true
		}
	}
	if p.Tags != nil {
		tags := uniqueStrings(*p.Tags)
		if !slices.Equal(c.Tags, tags) {
			c.Tags = tags
			changed = true
		}
	}

	if changed {
		c.IncrementVersion()
		c.AddDomainEvent(NewCustomerUpdatedEvent(c, actor))
	}
	return changed, nil
}

// ChangeAccountStatus moves the account to a non-churn status.
// Churn is recorded through Churn so the documentation gate cannot be skipped.
func (c *Customer) ChangeAccountStatus(status AccountStatus, actor *uuid.UUID) (bool, error) {
	if !status.IsValid() {
		return false, shared.NewValidationError("account_status", "invalid account_status '"+string(status)+"'")
	}
	if status.IsChurned() {
		if c.AccountStatus.IsChurned() {
			return false, shared.NewConflictError("customer is already churned")
		}
		return false, shared.NewValidationError("churn_data", "churn_data required when account_status is Churn")
	}
	if c.AccountStatus.IsChurned() {
		return false, shared.NewConflictError("a churned account cannot move to " + string(status))
	}
	if c.AccountStatus == status {
		return false, nil
	}

	old := c.AccountStatus
	c.AccountStatus = status
	c.IncrementVersion()
	c.AddDomainEvent(NewAccountStatusChangedEvent(c, old, actor))
	return true, nil
}

// Churn validates the churn documentation in full and, only then, marks the
// account churned. The returned record must be persisted together with the
// customer in one transaction.
func (c *Customer) Churn(in ChurnInput, actor *uuid.UUID, now time.Time) (*ChurnRecord, error) {
	if c.AccountStatus.IsChurned() {
		return nil, shared.NewConflictError("customer is already churned")
	}
	record, err := NewChurnRecord(c, in, actor, now)
	if err != nil {
		return nil, err
	}

	old := c.AccountStatus
	c.AccountStatus = AccountStatusChurn
	c.IncrementVersion()
	c.AddDomainEvent(NewAccountStatusChangedEvent(c, old, actor))
	c.AddDomainEvent(NewCustomerChurnedEvent(c, record, actor))
	return record, nil
}

// ChangeHealthStatus applies the health gate. Moving to a different degraded
// status requires a fully documented risk, which is returned for persistence
// in the same transaction. Moving to Healthy or to the current status needs none.
// HealthScore is never touched.
func (c *Customer) ChangeHealthStatus(health HealthStatus, risk *RiskInput, actor *uuid.UUID) (*Risk, bool, error) {
	if !health.IsValid() {
		return nil, false, shared.NewValidationError("health_status", "invalid health_status '"+string(health)+"'")
	}
	if c.HealthStatus == health {
		return nil, false, nil
	}

	var created *Risk
	if health.IsDegraded() {
		if risk == nil {
			return nil, false, shared.NewValidationError("risk", "risk required when health_status changes to "+string(health))
		}
		if errs := ValidateHealthGateRisk(*risk); errs != nil {
			out := &shared.ValidationError{}
			out.Merge("risk", errs)
			return nil, false, out
		}
		r, err := NewRisk(c.ID, *risk, RiskSourceHealthChange, actor)
		if err != nil {
			return nil, false, err
		}
		created = r
	}

	old := c.HealthStatus
	c.HealthStatus = health
	c.IncrementVersion()
	c.AddDomainEvent(NewHealthStatusChangedEvent(c, old, created, actor))
	return created, true, nil
}

func set[T comparable](dst *T, src *T) bool {
	if src == nil || *dst == *src {
		return false
	}
	*dst = *src
	return true
}

func setDecimal(dst *decimal.Decimal, src *decimal.Decimal) bool {
	if src == nil || dst.Equal(*src) {
		return false
	}
	*dst = *src
	return true
}

func setDate(dst **time.Time, src *time.Time) bool {
	if src == nil {
		return false
	}
	if *dst != nil && (*dst).Equal(*src) {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func setRef(dst **uuid.UUID, src *uuid.UUID) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

// uniqueStrings trims, drops blanks and de-duplicates while keeping order
func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
