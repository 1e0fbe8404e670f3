package event

import (
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/domain/pipeline"
)

// RegisterDomainEvents registers every event the domain publishes
func RegisterDomainEvents(s *EventSerializer) {
	// Customers and risks
	s.Register(account.EventTypeCustomerCreated, &account.CustomerCreatedEvent{})
	s.Register(account.EventTypeCustomerUpdated, &account.CustomerUpdatedEvent{})
	s.Register(account.EventTypeAccountStatusChanged, &account.AccountStatusChangedEvent{})
	s.Register(account.EventTypeCustomerChurned, &account.CustomerChurnedEvent{})
	s.Register(account.EventTypeHealthStatusChanged, &account.HealthStatusChangedEvent{})
	s.Register(account.EventTypeRiskCreated, &account.RiskCreatedEvent{})
	s.Register(account.EventTypeRiskUpdated, &account.RiskUpdatedEvent{})

	// Opportunities
	s.Register(pipeline.EventTypeOpportunityCreated, &pipeline.OpportunityCreatedEvent{})
	s.Register(pipeline.EventTypeOpportunityUpdated, &pipeline.OpportunityUpdatedEvent{})
	s.Register(pipeline.EventTypeStageChanged, &pipeline.StageChangedEvent{})

	// Invoices share one payload type
	s.Register(ledger.EventTypeInvoiceCreated, &ledger.InvoiceEvent{})
	s.Register(ledger.EventTypeInvoiceUpdated, &ledger.InvoiceEvent{})
	s.Register(ledger.EventTypeInvoiceDeleted, &ledger.InvoiceEvent{})
}
