package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apppipeline "github.com/cshub/backend/internal/application/pipeline"
	"github.com/cshub/backend/internal/domain/pipeline"
	"github.com/cshub/backend/internal/interfaces/http/dto"
	"github.com/cshub/backend/internal/interfaces/http/middleware"
)

// OpportunityHandler handles the opportunity pipeline
type OpportunityHandler struct {
	BaseHandler
	opportunities *apppipeline.OpportunityService
}

// NewOpportunityHandler creates a new OpportunityHandler
func NewOpportunityHandler(opportunities *apppipeline.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{opportunities: opportunities}
}

// Create godoc
// @Summary      Open an opportunity
// @Tags         opportunities
// @Accept       json
// @Produce      json
// @Param        request body pipeline.OpportunityInput true "Opportunity"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /opportunities [post]
func (h *OpportunityHandler) Create(c *gin.Context) {
	var in pipeline.OpportunityInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.opportunities.Create(c.Request.Context(), in, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List opportunities
// @Tags         opportunities
// @Produce      json
// @Param        customer_id query string false "Customer ID"
// @Param        stage       query string false "Stage"
// @Param        search      query string false "Title contains"
// @Success      200 {object} dto.Response
// @Router       /opportunities [get]
func (h *OpportunityHandler) List(c *gin.Context) {
	var q apppipeline.OpportunityListFilter
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.opportunities.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Get godoc
// @Summary      Get an opportunity with its stage history
// @Tags         opportunities
// @Produce      json
// @Param        id path string true "Opportunity ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /opportunities/{id} [get]
func (h *OpportunityHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.opportunities.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update an opportunity
// @Description  A stage in the patch goes through the same rules as /stage.
// @Tags         opportunities
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Opportunity ID"
// @Param        request body pipeline.OpportunityPatch true "Fields to change"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /opportunities/{id} [put]
func (h *OpportunityHandler) Update(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var patch pipeline.OpportunityPatch
	if !h.BindJSON(c, &patch) {
		return
	}
	resp, err := h.opportunities.Update(c.Request.Context(), id, patch, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MoveStage godoc
// @Summary      Move an opportunity to another stage
// @Tags         opportunities
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Opportunity ID"
// @Param        request body apppipeline.MoveStageRequest true "Target stage"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /opportunities/{id}/stage [put]
func (h *OpportunityHandler) MoveStage(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req apppipeline.MoveStageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.opportunities.MoveStage(c.Request.Context(), id, req.Stage, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// History godoc
// @Summary      Stage history of an opportunity
// @Tags         opportunities
// @Produce      json
// @Param        id path string true "Opportunity ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /opportunities/{id}/history [get]
func (h *OpportunityHandler) History(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	history, err := h.opportunities.StageHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}
