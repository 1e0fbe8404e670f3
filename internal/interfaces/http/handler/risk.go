package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appaccount "github.com/cshub/backend/internal/application/account"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/interfaces/http/dto"
	"github.com/cshub/backend/internal/interfaces/http/middleware"
)

// RiskHandler handles risk endpoints
type RiskHandler struct {
	BaseHandler
	risks *appaccount.RiskService
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(risks *appaccount.RiskService) *RiskHandler {
	return &RiskHandler{risks: risks}
}

// Create godoc
// @Summary      Document a risk
// @Tags         risks
// @Accept       json
// @Produce      json
// @Param        request body appaccount.CreateRiskRequest true "Risk"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /risks [post]
func (h *RiskHandler) Create(c *gin.Context) {
	var req appaccount.CreateRiskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.risks.Create(c.Request.Context(), req, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List risks
// @Tags         risks
// @Produce      json
// @Param        customer_id query string false "Customer ID"
// @Param        status      query string false "Risk status"
// @Param        severity    query string false "Severity"
// @Success      200 {object} dto.Response
// @Router       /risks [get]
func (h *RiskHandler) List(c *gin.Context) {
	var q appaccount.RiskListFilter
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.risks.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Get godoc
// @Summary      Get a risk
// @Tags         risks
// @Produce      json
// @Param        id path string true "Risk ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /risks/{id} [get]
func (h *RiskHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.risks.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update a risk
// @Tags         risks
// @Accept       json
// @Produce      json
// @Param        id      path string            true "Risk ID"
// @Param        request body account.RiskPatch true "Fields to change"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /risks/{id} [put]
func (h *RiskHandler) Update(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var patch account.RiskPatch
	if !h.BindJSON(c, &patch) {
		return
	}
	resp, err := h.risks.Update(c.Request.Context(), id, patch, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
