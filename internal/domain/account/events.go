package account

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCustomer = "Customer"
	AggregateTypeRisk     = "Risk"
)

// Event type constants
const (
	EventTypeCustomerCreated      = "CustomerCreated"
	EventTypeCustomerUpdated      = "CustomerUpdated"
	EventTypeAccountStatusChanged = "AccountStatusChanged"
	EventTypeCustomerChurned      = "CustomerChurned"
	EventTypeHealthStatusChanged  = "HealthStatusChanged"
	EventTypeRiskCreated          = "RiskCreated"
	EventTypeRiskUpdated          = "RiskUpdated"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID     `json:"customer_id"`
	CompanyName   string        `json:"company_name"`
	AccountStatus AccountStatus `json:"account_status"`
	HealthStatus  HealthStatus  `json:"health_status"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer, actor *uuid.UUID) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, actor),
		CustomerID:      c.ID,
		CompanyName:     c.CompanyName,
		AccountStatus:   c.AccountStatus,
		HealthStatus:    c.HealthStatus,
	}
}

// CustomerUpdatedEvent is published when plain customer fields change
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID `json:"customer_id"`
	CompanyName string    `json:"company_name"`
	Version     int       `json:"version"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(c *Customer, actor *uuid.UUID) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, c.ID, actor),
		CustomerID:      c.ID,
		CompanyName:     c.CompanyName,
		Version:         c.Version,
	}
}

// AccountStatusChangedEvent is published on every account status transition
type AccountStatusChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID     `json:"customer_id"`
	OldStatus  AccountStatus `json:"old_status"`
	NewStatus  AccountStatus `json:"new_status"`
}

// NewAccountStatusChangedEvent creates a new AccountStatusChangedEvent
func NewAccountStatusChangedEvent(c *Customer, old AccountStatus, actor *uuid.UUID) *AccountStatusChangedEvent {
	return &AccountStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountStatusChanged, AggregateTypeCustomer, c.ID, actor),
		CustomerID:      c.ID,
		OldStatus:       old,
		NewStatus:       c.AccountStatus,
	}
}

// CustomerChurnedEvent is published when the churn record is written
type CustomerChurnedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID       `json:"customer_id"`
	ChurnRecordID uuid.UUID       `json:"churn_record_id"`
	ChurnType     ChurnType       `json:"churn_type"`
	PrimaryReason ChurnReason     `json:"primary_reason"`
	RevenueImpact decimal.Decimal `json:"revenue_impact"`
}

// NewCustomerChurnedEvent creates a new CustomerChurnedEvent
func NewCustomerChurnedEvent(c *Customer, r *ChurnRecord, actor *uuid.UUID) *CustomerChurnedEvent {
	return &CustomerChurnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerChurned, AggregateTypeCustomer, c.ID, actor),
		CustomerID:      c.ID,
		ChurnRecordID:   r.ID,
		ChurnType:       r.ChurnType,
		PrimaryReason:   r.PrimaryReason,
		RevenueImpact:   r.RevenueImpact,
	}
}

// HealthStatusChangedEvent is published on every health transition
type HealthStatusChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID    `json:"customer_id"`
	OldHealth  HealthStatus `json:"old_health"`
	NewHealth  HealthStatus `json:"new_health"`
	RiskID     *uuid.UUID   `json:"risk_id,omitempty"`
}

// NewHealthStatusChangedEvent creates a new HealthStatusChangedEvent
func NewHealthStatusChangedEvent(c *Customer, old HealthStatus, risk *Risk, actor *uuid.UUID) *HealthStatusChangedEvent {
	e := &HealthStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeHealthStatusChanged, AggregateTypeCustomer, c.ID, actor),
		CustomerID:      c.ID,
		OldHealth:       old,
		NewHealth:       c.HealthStatus,
	}
	if risk != nil {
		id := risk.ID
		e.RiskID = &id
	}
	return e
}

// RiskCreatedEvent is published when a risk is documented
type RiskCreatedEvent struct {
	shared.BaseDomainEvent
	RiskID     uuid.UUID    `json:"risk_id"`
	CustomerID uuid.UUID    `json:"customer_id"`
	Category   RiskCategory `json:"category"`
	Severity   RiskSeverity `json:"severity"`
	Source     RiskSource   `json:"source"`
}

// NewRiskCreatedEvent creates a new RiskCreatedEvent
func NewRiskCreatedEvent(r *Risk, actor *uuid.UUID) *RiskCreatedEvent {
	return &RiskCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRiskCreated, AggregateTypeRisk, r.ID, actor),
		RiskID:          r.ID,
		CustomerID:      r.CustomerID,
		Category:        r.Category,
		Severity:        r.Severity,
		Source:          r.Source,
	}
}

// RiskUpdatedEvent is published when a risk changes
type RiskUpdatedEvent struct {
	shared.BaseDomainEvent
	RiskID     uuid.UUID    `json:"risk_id"`
	CustomerID uuid.UUID    `json:"customer_id"`
	OldStatus  RiskStatus   `json:"old_status"`
	NewStatus  RiskStatus   `json:"new_status"`
	Severity   RiskSeverity `json:"severity"`
}

// NewRiskUpdatedEvent creates a new RiskUpdatedEvent
func NewRiskUpdatedEvent(r *Risk, old RiskStatus, actor *uuid.UUID) *RiskUpdatedEvent {
	return &RiskUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRiskUpdated, AggregateTypeRisk, r.ID, actor),
		RiskID:          r.ID,
		CustomerID:      r.CustomerID,
		OldStatus:       old,
		NewStatus:       r.Status,
		Severity:        r.Severity,
	}
}
