package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/domain/pipeline"
	"github.com/cshub/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics turns domain events into customer-success counters.
// It subscribes to the event bus as a wildcard handler and also observes
// delivery outcomes of the bus itself.
type BusinessMetrics struct {
	eventsDelivered *Counter
	handlerFailures *Counter
	customers       *Counter
	churns          *Counter
	churnRevenue    metric.Float64Counter
	healthChanges   *Counter
	risks           *Counter
	stageChanges    *Counter
	invoices        *Counter
	importRows      *Counter
	logger          *zap.Logger
}

// NewBusinessMetrics creates every instrument on meter
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewBusinessMetrics: meter cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	counters := []struct {
		dst               **Counter
		name, description string
	}{
		{&bm.eventsDelivered, "cshub_domain_events_total", "Domain events delivered to the event bus"},
		{&bm.handlerFailures, "cshub_event_handler_failures_total", "Event handler invocations that failed"},
		{&bm.customers, "cshub_customers_created_total", "Customers created"},
		{&bm.churns, "cshub_customers_churned_total", "Customers moved to churn"},
		{&bm.healthChanges, "cshub_health_transitions_total", "Customer health status transitions"},
		{&bm.risks, "cshub_risks_created_total", "Risks documented"},
		{&bm.stageChanges, "cshub_opportunity_stage_changes_total", "Opportunity stage transitions"},
		{&bm.invoices, "cshub_invoice_writes_total", "Invoice writes by operation"},
		{&bm.importRows, "cshub_import_rows_total", "Bulk upload rows by outcome"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.description, "1")
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	revenue, err := meter.Float64Counter("cshub_churn_revenue_impact",
		metric.WithDescription("Revenue lost to churn"),
		metric.WithUnit("{currency}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter cshub_churn_revenue_impact: %w", err)
	}
	bm.churnRevenue = revenue

	return bm, nil
}

// EventTypes subscribes to every event
func (bm *BusinessMetrics) EventTypes() []string {
	return nil
}

// Handle records the counters an event contributes to
func (bm *BusinessMetrics) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *account.CustomerCreatedEvent:
		bm.customers.Inc(ctx, AttrAccountStatus.String(string(ev.AccountStatus)))
	case *account.CustomerChurnedEvent:
		bm.churns.Inc(ctx,
			AttrChurnType.String(string(ev.ChurnType)),
			AttrChurnReason.String(string(ev.PrimaryReason)),
		)
		bm.churnRevenue.Add(ctx, ev.RevenueImpact.InexactFloat64(),
			metric.WithAttributes(AttrChurnType.String(string(ev.ChurnType))))
	case *account.HealthStatusChangedEvent:
		bm.healthChanges.Inc(ctx,
			AttrHealthFrom.String(string(ev.OldHealth)),
			AttrHealthTo.String(string(ev.NewHealth)),
		)
	case *account.RiskCreatedEvent:
		bm.risks.Inc(ctx,
			AttrRiskSeverity.String(string(ev.Severity)),
			AttrRiskCategory.String(string(ev.Category)),
		)
	case *pipeline.StageChangedEvent:
		bm.stageChanges.Inc(ctx,
			AttrStageFrom.String(string(ev.Change.From)),
			AttrStageTo.String(string(ev.Change.To)),
		)
	case *ledger.InvoiceEvent:
		bm.invoices.Inc(ctx, AttrOperation.String(ev.EventType()))
	}
	return nil
}

// EventDelivered counts bus deliveries and handler failures
func (bm *BusinessMetrics) EventDelivered(ctx context.Context, eventType string, handlers, failures int) {
	attr := AttrEventType.String(eventType)
	bm.eventsDelivered.Inc(ctx, attr)
	if failures > 0 {
		bm.handlerFailures.Add(ctx, int64(failures), attr)
	}
}

// RecordImport counts the rows of one bulk upload
func (bm *BusinessMetrics) RecordImport(ctx context.Context, imported, failed int) {
	if imported > 0 {
		bm.importRows.Add(ctx, int64(imported), AttrOutcome.String("imported"))
	}
	if failed > 0 {
		bm.importRows.Add(ctx, int64(failed), AttrOutcome.String("failed"))
	}
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
