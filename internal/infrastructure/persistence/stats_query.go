package persistence

import (
	"context"
	"time"

	"github.com/cshub/backend/internal/application/dashboard"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/domain/pipeline"
	"github.com/cshub/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStatsQuery computes dashboard counters with aggregate queries.
// Overdue receivables are derived from due dates, never from stored status.
type GormStatsQuery struct {
	db       *gorm.DB
	invoices *GormInvoiceRepository
}

// NewGormStatsQuery creates a new GormStatsQuery
func NewGormStatsQuery(db *gorm.DB) *GormStatsQuery {
	return &GormStatsQuery{db: db, invoices: NewGormInvoiceRepository(db)}
}

type groupCount struct {
	Label string
	Total int64
}

// Collect gathers a fresh snapshot
func (q *GormStatsQuery) Collect(ctx context.Context, asOf time.Time) (*dashboard.Stats, error) {
	db := q.db.WithContext(ctx)
	stats := &dashboard.Stats{
		ByHealthStatus:  make(map[string]int64),
		ByAccountStatus: make(map[string]int64),
	}

	if err := db.Model(&models.CustomerModel{}).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, err
	}

	var arr decimal.NullDecimal
	if err := db.Model(&models.CustomerModel{}).
		Where("account_status <> ?", account.AccountStatusChurn).
		Select("SUM(arr)").Row().Scan(&arr); err != nil {
		return nil, err
	}
	stats.TotalARR = orZero(arr)

	var byHealth []groupCount
	if err := db.Model(&models.CustomerModel{}).
		Select("health_status AS label, COUNT(*) AS total").
		Group("health_status").Scan(&byHealth).Error; err != nil {
		return nil, err
	}
	for _, g := range byHealth {
		stats.ByHealthStatus[g.Label] = g.Total
	}

	var byAccount []groupCount
	if err := db.Model(&models.CustomerModel{}).
		Select("account_status AS label, COUNT(*) AS total").
		Group("account_status").Scan(&byAccount).Error; err != nil {
		return nil, err
	}
	for _, g := range byAccount {
		stats.ByAccountStatus[g.Label] = g.Total
	}

	openRiskStatuses := []account.RiskStatus{account.RiskStatusOpen, account.RiskStatusInProgress, account.RiskStatusMonitoring}
	if err := db.Model(&models.RiskModel{}).
		Where("status IN ?", openRiskStatuses).
		Count(&stats.OpenRisks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.RiskModel{}).
		Where("status IN ? AND severity = ?", openRiskStatuses, account.RiskSeverityCritical).
		Count(&stats.CriticalOpenRisks).Error; err != nil {
		return nil, err
	}

	closedStages := []pipeline.Stage{pipeline.StageClosedWon, pipeline.StageClosedLost}
	if err := db.Model(&models.OpportunityModel{}).
		Where("stage NOT IN ?", closedStages).
		Count(&stats.OpenOpportunities).Error; err != nil {
		return nil, err
	}
	var pipelineValue decimal.NullDecimal
	if err := db.Model(&models.OpportunityModel{}).
		Where("stage NOT IN ?", closedStages).
		Select("SUM(value)").Row().Scan(&pipelineValue); err != nil {
		return nil, err
	}
	stats.OpenPipelineValue = orZero(pipelineValue)

	unsettled, err := q.invoices.FindUnsettled(ctx)
	if err != nil {
		return nil, err
	}
	summary := ledger.Summarize(unsettled, asOf)
	stats.OverdueReceivables = summary.Overdue
	stats.OverdueInvoices = int64(summary.OverdueCount)

	return stats, nil
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

var _ dashboard.StatsQuery = (*GormStatsQuery)(nil)
