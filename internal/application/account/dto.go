package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/account"
)

// ChangeAccountStatusRequest moves an account; churn_data is required for Churn
type ChangeAccountStatusRequest struct {
	AccountStatus account.AccountStatus `json:"account_status" binding:"required"`
	ChurnData     *account.ChurnInput   `json:"churn_data"`
}

// ChangeHealthStatusRequest moves the health status; risk is required when degrading
type ChangeHealthStatusRequest struct {
	HealthStatus account.HealthStatus `json:"health_status" binding:"required"`
	Risk         *account.RiskInput   `json:"risk"`
}

// CreateRiskRequest documents a risk directly against a customer
type CreateRiskRequest struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	account.RiskInput
}

// CustomerListFilter is the query of a customer listing
type CustomerListFilter struct {
	Search        string `form:"search"`
	AccountStatus string `form:"account_status"`
	HealthStatus  string `form:"health_status"`
	CSMOwnerID    string `form:"csm_owner_id"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RiskListFilter is the query of a risk listing
type RiskListFilter struct {
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
	Severity   string `form:"severity"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CustomerResponse is the API view of a customer
type CustomerResponse struct {
	ID                       uuid.UUID                `json:"id"`
	CompanyName              string                   `json:"company_name"`
	Website                  string                   `json:"website,omitempty"`
	Industry                 string                   `json:"industry,omitempty"`
	Region                   account.Region           `json:"region,omitempty"`
	AccountStatus            account.AccountStatus    `json:"account_status"`
	HealthStatus             account.HealthStatus     `json:"health_status"`
	HealthScore              int                      `json:"health_score"`
	PlanType                 account.PlanType         `json:"plan_type,omitempty"`
	OnboardingStatus         account.OnboardingStatus `json:"onboarding_status,omitempty"`
	ARR                      decimal.Decimal          `json:"arr"`
	OneTimeSetupCost         decimal.Decimal          `json:"one_time_setup_cost"`
	QuarterlyConsumptionCost decimal.Decimal          `json:"quarterly_consumption_cost"`
	ContractStartDate        *time.Time               `json:"contract_start_date,omitempty"`
	ContractEndDate          *time.Time               `json:"contract_end_date,omitempty"`
	RenewalDate              *time.Time               `json:"renewal_date,omitempty"`
	GoLiveDate               *time.Time               `json:"go_live_date,omitempty"`
	LastActivityDate         *time.Time               `json:"last_activity_date,omitempty"`
	ActiveUsers              int                      `json:"active_users"`
	TotalLicensedUsers       int                      `json:"total_licensed_users"`
	CallsProcessed           int64                    `json:"calls_processed"`
	CSMOwnerID               *uuid.UUID               `json:"csm_owner_id"`
	AMOwnerID                *uuid.UUID               `json:"am_owner_id"`
	Stakeholders             []account.Stakeholder    `json:"stakeholders"`
	ProductsPurchased        []string                 `json:"products_purchased"`
	Tags                     []string                 `json:"tags"`
	CreatedBy                *uuid.UUID               `json:"created_by,omitempty"`
	Version                  int                      `json:"version"`
	CreatedAt                time.Time                `json:"created_at"`
	UpdatedAt                time.Time                `json:"updated_at"`
}

// ToCustomerResponse maps the aggregate to its API view
func ToCustomerResponse(c *account.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                       c.ID,
		CompanyName:              c.CompanyName,
		Website:                  c.Website,
		Industry:                 c.Industry,
		Region:                   c.Region,
		AccountStatus:            c.AccountStatus,
		HealthStatus:             c.HealthStatus,
		HealthScore:              c.HealthScore,
		PlanType:                 c.PlanType,
		OnboardingStatus:         c.OnboardingStatus,
		ARR:                      c.ARR,
		OneTimeSetupCost:         c.OneTimeSetupCost,
		QuarterlyConsumptionCost: c.QuarterlyConsumptionCost,
		ContractStartDate:        c.ContractStartDate,
		ContractEndDate:          c.ContractEndDate,
		RenewalDate:              c.RenewalDate,
		GoLiveDate:               c.GoLiveDate,
		LastActivityDate:         c.LastActivityDate,
		ActiveUsers:              c.ActiveUsers,
		TotalLicensedUsers:       c.TotalLicensedUsers,
		CallsProcessed:           c.CallsProcessed,
		CSMOwnerID:               c.CSMOwnerID,
		AMOwnerID:                c.AMOwnerID,
		Stakeholders:             nonNil(c.Stakeholders),
		ProductsPurchased:        nonNil(c.ProductsPurchased),
		Tags:                     nonNil(c.Tags),
		CreatedBy:                c.CreatedBy,
		Version:                  c.Version,
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
	}
}

// ChurnRecordResponse is the API view of a churn record
type ChurnRecordResponse struct {
	ID                     uuid.UUID                 `json:"id"`
	CustomerID             uuid.UUID                 `json:"customer_id"`
	ChurnType              account.ChurnType         `json:"churn_type"`
	EffectiveChurnDate     time.Time                 `json:"effective_churn_date"`
	RevenueImpact          decimal.Decimal           `json:"revenue_impact"`
	PrimaryReason          account.ChurnReason       `json:"primary_reason"`
	PrimaryReasonOther     string                    `json:"primary_reason_other,omitempty"`
	SecondaryReasons       []account.SecondaryReason `json:"secondary_reasons"`
	CouldHaveBeenPrevented account.Preventability    `json:"could_have_been_prevented"`
	OwnerResponsible       account.ChurnOwner        `json:"owner_responsible"`
	ContractEndDate        *time.Time                `json:"contract_end_date,omitempty"`
	ActionTakenBeforeChurn string                    `json:"action_taken_before_churn,omitempty"`
	CustomerFeedback       string                    `json:"customer_feedback,omitempty"`
	InternalNotes          string                    `json:"internal_notes,omitempty"`
	ARRAtChurn             decimal.Decimal           `json:"arr_at_churn"`
	ChurnedAt              time.Time                 `json:"churned_at"`
	RecordedBy             *uuid.UUID                `json:"recorded_by,omitempty"`
}

// ToChurnRecordResponse maps a churn record to its API view
func ToChurnRecordResponse(r *account.ChurnRecord) ChurnRecordResponse {
	return ChurnRecordResponse{
		ID:                     r.ID,
		CustomerID:             r.CustomerID,
		ChurnType:              r.ChurnType,
		EffectiveChurnDate:     r.EffectiveChurnDate,
		RevenueImpact:          r.RevenueImpact,
		PrimaryReason:          r.PrimaryReason,
		PrimaryReasonOther:     r.PrimaryReasonOther,
		SecondaryReasons:       nonNil(r.SecondaryReasons),
		CouldHaveBeenPrevented: r.CouldHaveBeenPrevented,
		OwnerResponsible:       r.OwnerResponsible,
		ContractEndDate:        r.ContractEndDate,
		ActionTakenBeforeChurn: r.ActionTakenBeforeChurn,
		CustomerFeedback:       r.CustomerFeedback,
		InternalNotes:          r.InternalNotes,
		ARRAtChurn:             r.ARRAtChurn,
		ChurnedAt:              r.ChurnedAt,
		RecordedBy:             r.RecordedBy,
	}
}

// RiskResponse is the API view of a risk
type RiskResponse struct {
	ID               uuid.UUID            `json:"id"`
	CustomerID       uuid.UUID            `json:"customer_id"`
	Title            string               `json:"title"`
	Description      string               `json:"description,omitempty"`
	Category         account.RiskCategory `json:"category"`
	Subcategory      string               `json:"subcategory"`
	Severity         account.RiskSeverity `json:"severity"`
	Status           account.RiskStatus   `json:"status"`
	AssignedToID     *uuid.UUID           `json:"assigned_to_id"`
	RevenueImpact    *decimal.Decimal     `json:"revenue_impact"`
	ChurnProbability *int                 `json:"churn_probability"`
	MitigationPlan   string               `json:"mitigation_plan,omitempty"`
	DueDate          *time.Time           `json:"due_date,omitempty"`
	Source           account.RiskSource   `json:"source"`
	ResolvedAt       *time.Time           `json:"resolved_at,omitempty"`
	Version          int                  `json:"version"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// ToRiskResponse maps a risk to its API view
func ToRiskResponse(r *account.Risk) RiskResponse {
	return RiskResponse{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		Title:            r.Title,
		Description:      r.Description,
		Category:         r.Category,
		Subcategory:      r.Subcategory,
		Severity:         r.Severity,
		Status:           r.Status,
		AssignedToID:     r.AssignedToID,
		RevenueImpact:    r.RevenueImpact,
		ChurnProbability: r.ChurnProbability,
		MitigationPlan:   r.MitigationPlan,
		DueDate:          r.DueDate,
		Source:           r.Source,
		ResolvedAt:       r.ResolvedAt,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// StatusChangeResponse reports the customer after a gated transition
// together with any record the gate produced
type StatusChangeResponse struct {
	Customer    CustomerResponse     `json:"customer"`
	ChurnRecord *ChurnRecordResponse `json:"churn_record,omitempty"`
	Risk        *RiskResponse        `json:"risk,omitempty"`
	Changed     bool                 `json:"changed"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
