package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/pipeline"
)

// MoveStageRequest moves an opportunity to another stage
type MoveStageRequest struct {
	Stage pipeline.Stage `json:"stage" binding:"required"`
}

// OpportunityListFilter is the query of an opportunity listing
type OpportunityListFilter struct {
	CustomerID string `form:"customer_id"`
	Stage      string `form:"stage"`
	Search     string `form:"search"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OpportunityResponse is the API view of an opportunity
type OpportunityResponse struct {
	ID                uuid.UUID                `json:"id"`
	CustomerID        uuid.UUID                `json:"customer_id"`
	Title             string                   `json:"title"`
	Type              pipeline.OpportunityType `json:"type"`
	Stage             pipeline.Stage           `json:"stage"`
	Probability       int                      `json:"probability"`
	Value             decimal.Decimal          `json:"value"`
	OwnerID           *uuid.UUID               `json:"owner_id"`
	ExpectedCloseDate *time.Time               `json:"expected_close_date,omitempty"`
	Notes             string                   `json:"notes,omitempty"`
	StageHistory      []pipeline.StageChange   `json:"stage_history,omitempty"`
	CreatedBy         *uuid.UUID               `json:"created_by,omitempty"`
	Version           int                      `json:"version"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// ToOpportunityResponse maps an opportunity without its log
func ToOpportunityResponse(o *pipeline.Opportunity) OpportunityResponse {
	return OpportunityResponse{
		ID:                o.ID,
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
		Version:           o.Version,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// toDetailResponse includes the full stage log
func toDetailResponse(o *pipeline.Opportunity) OpportunityResponse {
	r := ToOpportunityResponse(o)
	r.StageHistory = o.StageLog()
	if r.StageHistory == nil {
		r.StageHistory = []pipeline.StageChange{}
	}
	return r
}
