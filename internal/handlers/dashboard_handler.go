package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spacos/internal/badge"
	"spacos/internal/services"
)

// DashboardHandler serves the organization overview and the status
// vocabularies clients render badges from.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetOverview handles the dashboard request
// @Summary     Dashboard overview
// @Description SPAC counts by status, urgent deadlines, pipeline funnel and value, upcoming filings
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Overview "Overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Stored value outside its vocabulary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.dashboardService.GetOverview(c.Request.Context(), ac, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetVocabularies returns every closed vocabulary with its badge variant
// @Summary     Status vocabularies
// @Description Values of each status vocabulary in display order with their badge variant
// @Tags        meta
// @Produce     json
// @Success     200 {object} map[string][]badge.Option "Vocabularies"
// @Router      /meta/vocabularies [get]
func (h *DashboardHandler) GetVocabularies(c *gin.Context) {
	c.JSON(http.StatusOK, badge.Vocabularies())
}
