package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/account"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	AggregateModel
	CompanyName              string                   `gorm:"type:varchar(255);not null;uniqueIndex:idx_customers_company_name_lower,expression:LOWER(company_name)"`
	Website                  string                   `gorm:"type:varchar(255)"`
	Industry                 string                   `gorm:"type:varchar(100)"`
	Region                   account.Region           `gorm:"type:varchar(50)"`
	AccountStatus            account.AccountStatus    `gorm:"type:varchar(30);not null;default:'Onboarding';index"`
	HealthStatus             account.HealthStatus     `gorm:"type:varchar(30);not null;default:'Healthy';index"`
	HealthScore              int                      `gorm:"not null"`
	PlanType                 account.PlanType         `gorm:"type:varchar(30)"`
	OnboardingStatus         account.OnboardingStatus `gorm:"type:varchar(30)"`
	ARR                      decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	OneTimeSetupCost         decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	QuarterlyConsumptionCost decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	ContractStartDate        *time.Time
	ContractEndDate          *time.Time
	RenewalDate              *time.Time
	GoLiveDate               *time.Time
	LastActivityDate         *time.Time
	ActiveUsers              int                   `gorm:"not null;default:0"`
	TotalLicensedUsers       int                   `gorm:"not null;default:0"`
	CallsProcessed           int64                 `gorm:"not null;default:0"`
	CSMOwnerID               *uuid.UUID            `gorm:"type:uuid;index"`
	AMOwnerID                *uuid.UUID            `gorm:"type:uuid;index"`
	Stakeholders             []account.Stakeholder `gorm:"type:jsonb;serializer:json"`
	ProductsPurchased        []string              `gorm:"type:jsonb;serializer:json"`
	Tags                     []string              `gorm:"type:jsonb;serializer:json"`
	CreatedBy                *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *account.Customer {
	return &account.Customer{
		BaseAggregateRoot:        m.ToAggregateRoot(),
		CompanyName:              m.CompanyName,
		Website:                  m.Website,
		Industry:                 m.Industry,
		Region:                   m.Region,
		AccountStatus:            m.AccountStatus,
		HealthStatus:             m.HealthStatus,
		HealthScore:              m.HealthScore,
		PlanType:                 m.PlanType,
		OnboardingStatus:         m.OnboardingStatus,
		ARR:                      m.ARR,
		OneTimeSetupCost:         m.OneTimeSetupCost,
		QuarterlyConsumptionCost: m.QuarterlyConsumptionCost,
		ContractStartDate:        m.ContractStartDate,
		ContractEndDate:          m.ContractEndDate,
		RenewalDate:              m.RenewalDate,
		GoLiveDate:               m.GoLiveDate,
		LastActivityDate:         m.LastActivityDate,
		ActiveUsers:              m.ActiveUsers,
		TotalLicensedUsers:       m.TotalLicensedUsers,
		CallsProcessed:           m.CallsProcessed,
		CSMOwnerID:               m.CSMOwnerID,
		AMOwnerID:                m.AMOwnerID,
		Stakeholders:             m.Stakeholders,
		ProductsPurchased:        m.ProductsPurchased,
		Tags:                     m.Tags,
		CreatedBy:                m.CreatedBy,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *account.Customer) *CustomerModel {
	m := &CustomerModel{
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
		Stakeholders:             c.Stakeholders,
		ProductsPurchased:        c.ProductsPurchased,
		Tags:                     c.Tags,
		CreatedBy:                c.CreatedBy,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// ChurnRecordModel is the persistence model for a churn record.
// customer_id is unique: a customer churns at most once.
type ChurnRecordModel struct {
	BaseModel
	CustomerID             uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex"`
	ChurnType              account.ChurnType         `gorm:"type:varchar(30);not null"`
	EffectiveChurnDate     time.Time                 `gorm:"not null"`
	RevenueImpact          decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	PrimaryReason          account.ChurnReason       `gorm:"type:varchar(50);not null;index"`
	PrimaryReasonOther     string                    `gorm:"type:text"`
	SecondaryReasons       []account.SecondaryReason `gorm:"type:jsonb;serializer:json"`
	CouldHaveBeenPrevented account.Preventability    `gorm:"type:varchar(20);not null"`
	OwnerResponsible       account.ChurnOwner        `gorm:"type:varchar(20);not null"`
	ContractEndDate        *time.Time
	ActionTakenBeforeChurn string          `gorm:"type:text"`
	CustomerFeedback       string          `gorm:"type:text"`
	InternalNotes          string          `gorm:"type:text"`
	ARRAtChurn             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ChurnedAt              time.Time       `gorm:"not null"`
	RecordedBy             *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ChurnRecordModel) TableName() string {
	return "churn_records"
}

// ToDomain converts the model to a domain ChurnRecord
func (m *ChurnRecordModel) ToDomain() *account.ChurnRecord {
	return &account.ChurnRecord{
		BaseEntity:             m.BaseModel.ToDomain(),
		CustomerID:             m.CustomerID,
		ChurnType:              m.ChurnType,
		EffectiveChurnDate:     m.EffectiveChurnDate,
		RevenueImpact:          m.RevenueImpact,
		PrimaryReason:          m.PrimaryReason,
		PrimaryReasonOther:     m.PrimaryReasonOther,
		SecondaryReasons:       m.SecondaryReasons,
		CouldHaveBeenPrevented: m.CouldHaveBeenPrevented,
		OwnerResponsible:       m.OwnerResponsible,
		ContractEndDate:        m.ContractEndDate,
		ActionTakenBeforeChurn: m.ActionTakenBeforeChurn,
		CustomerFeedback:       m.CustomerFeedback,
		InternalNotes:          m.InternalNotes,
		ARRAtChurn:             m.ARRAtChurn,
		ChurnedAt:              m.ChurnedAt,
		RecordedBy:             m.RecordedBy,
	}
}

// ChurnRecordModelFromDomain creates a model from a domain ChurnRecord
func ChurnRecordModelFromDomain(r *account.ChurnRecord) *ChurnRecordModel {
	m := &ChurnRecordModel{
		CustomerID:             r.CustomerID,
		ChurnType:              r.ChurnType,
		EffectiveChurnDate:     r.EffectiveChurnDate,
		RevenueImpact:          r.RevenueImpact,
		PrimaryReason:          r.PrimaryReason,
		PrimaryReasonOther:     r.PrimaryReasonOther,
		SecondaryReasons:       r.SecondaryReasons,
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
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// RiskModel is the persistence model for the Risk aggregate
type RiskModel struct {
	AggregateModel
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	Title            string               `gorm:"type:varchar(255);not null"`
	Description      string               `gorm:"type:text"`
	Category         account.RiskCategory `gorm:"type:varchar(50);not null"`
	Subcategory      string               `gorm:"type:varchar(100);not null"`
	Severity         account.RiskSeverity `gorm:"type:varchar(20);not null;index"`
	Status           account.RiskStatus   `gorm:"type:varchar(20);not null;index"`
	AssignedToID     *uuid.UUID           `gorm:"type:uuid"`
	RevenueImpact    *decimal.Decimal     `gorm:"type:decimal(18,2)"`
	ChurnProbability *int
	MitigationPlan   string `gorm:"type:text"`
	DueDate          *time.Time
	Source           account.RiskSource `gorm:"type:varchar(20);not null;default:'manual'"`
	ResolvedAt       *time.Time
	CreatedBy        *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (RiskModel) TableName() string {
	return "risks"
}

// ToDomain converts the model to a domain Risk
func (m *RiskModel) ToDomain() *account.Risk {
	return &account.Risk{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		Title:             m.Title,
		Description:       m.Description,
		Category:          m.Category,
		Subcategory:       m.Subcategory,
		Severity:          m.Severity,
		Status:            m.Status,
		AssignedToID:      m.AssignedToID,
		RevenueImpact:     m.RevenueImpact,
		ChurnProbability:  m.ChurnProbability,
		MitigationPlan:    m.MitigationPlan,
		DueDate:           m.DueDate,
		Source:            m.Source,
		ResolvedAt:        m.ResolvedAt,
		CreatedBy:         m.CreatedBy,
	}
}

// RiskModelFromDomain creates a model from a domain Risk
func RiskModelFromDomain(r *account.Risk) *RiskModel {
	m := &RiskModel{
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
		CreatedBy:        r.CreatedBy,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
