package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cshub/backend/internal/application/dashboard"
)

// DashboardHandler serves portfolio stats
type DashboardHandler struct {
	BaseHandler
	stats *dashboard.Service
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(stats *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// Stats godoc
// @Summary      Portfolio stats
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
