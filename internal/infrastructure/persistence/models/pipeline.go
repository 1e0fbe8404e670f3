package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/pipeline"
)

// OpportunityModel is the persistence model for the Opportunity aggregate
type OpportunityModel struct {
	AggregateModel
	CustomerID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	Title             string                   `gorm:"type:varchar(255);not null"`
	Type              pipeline.OpportunityType `gorm:"type:varchar(30);not null"`
	Stage             pipeline.Stage           `gorm:"type:varchar(30);not null;index"`
	Probability       int                      `gorm:"not null"`
	Value             decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	OwnerID           *uuid.UUID               `gorm:"type:uuid"`
	ExpectedCloseDate *time.Time
	Notes             string     `gorm:"type:text"`
	CreatedBy         *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (OpportunityModel) TableName() string {
	return "opportunities"
}

// ToDomain converts the model to a domain Opportunity with the given log
func (m *OpportunityModel) ToDomain(log []StageChangeModel) *pipeline.Opportunity {
	o := &pipeline.Opportunity{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		Title:             m.Title,
		Type:              m.Type,
		Stage:             m.Stage,
		Probability:       m.Probability,
		Value:             m.Value,
		OwnerID:           m.OwnerID,
		ExpectedCloseDate: m.ExpectedCloseDate,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
	}
	entries := make([]pipeline.StageChange, len(log))
	for i := range log {
		entries[i] = log[i].ToDomain()
	}
	o.RestoreStageLog(entries)
	return o
}

// OpportunityModelFromDomain creates a model from a domain Opportunity
func OpportunityModelFromDomain(o *pipeline.Opportunity) *OpportunityModel {
	m := &OpportunityModel{
		CustomerID:        o.CustomerID,
		Title:             o.Title,
		Type:              o.Type,
		Stage:             o.Stage,
		Probability:       o.Probability,
		Value:             o.Value,
		OwnerID:           o.OwnerID,
		ExpectedCloseDate: o.ExpectedCloseDate,
		Notes:             o.Notes,
		CreatedBy:         o.CreatedBy,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// StageChangeModel is one append-only entry of an opportunity's stage log.
// (opportunity_id, sequence) is unique, so a replayed append fails instead of duplicating.
type StageChangeModel struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key"`
	OpportunityID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_stage_changes_opportunity_sequence"`
	Sequence          int            `gorm:"not null;uniqueIndex:idx_stage_changes_opportunity_sequence"`
	FromStage         pipeline.Stage `gorm:"type:varchar(30);not null"`
	ToStage           pipeline.Stage `gorm:"type:varchar(30);not null"`
	ChangedAt         time.Time      `gorm:"not null"`
	ProbabilityBefore int            `gorm:"not null"`
	ProbabilityAfter  int            `gorm:"not null"`
	ChangedBy         *uuid.UUID     `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StageChangeModel) TableName() string {
	return "opportunity_stage_changes"
}

// ToDomain converts the model to a domain StageChange
func (m *StageChangeModel) ToDomain() pipeline.StageChange {
	return pipeline.StageChange{
		ID:                m.ID,
		Sequence:          m.Sequence,
		From:              m.FromStage,
		To:                m.ToStage,
		ChangedAt:         m.ChangedAt,
		ProbabilityBefore: m.ProbabilityBefore,
		ProbabilityAfter:  m.ProbabilityAfter,
		ChangedBy:         m.ChangedBy,
	}
}

// StageChangeModelFromDomain creates a model for one log entry
func StageChangeModelFromDomain(opportunityID uuid.UUID, c pipeline.StageChange) *StageChangeModel {
	return &StageChangeModel{
		ID:                c.ID,
		OpportunityID:     opportunityID,
		Sequence:          c.Sequence,
		FromStage:         c.From,
		ToStage:           c.To,
		ChangedAt:         c.ChangedAt,
		ProbabilityBefore: c.ProbabilityBefore,
		ProbabilityAfter:  c.ProbabilityAfter,
		ChangedBy:         c.ChangedBy,
	}
}
