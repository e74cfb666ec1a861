package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/services"
)

// SPACHandler handles SPAC lifecycle requests.
type SPACHandler struct {
	spacService  services.SPACServicer
	auditService services.AuditServicer
}

// NewSPACHandler creates a new SPACHandler.
func NewSPACHandler(spacService services.SPACServicer, auditService services.AuditServicer) *SPACHandler {
	return &SPACHandler{spacService: spacService, auditService: auditService}
}

// CreateSPACRequest represents the request payload for creating a SPAC
type CreateSPACRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	Ticker            string          `json:"ticker" binding:"required,ticker"`
	IPODate           string          `json:"ipo_date"`
	DeadlineDate      string          `json:"deadline_date"`
	TrustAmount       decimal.Decimal `json:"trust_amount" swaggertype:"string"`
	SharesOutstanding *int64          `json:"shares_outstanding" binding:"omitempty,gte=0"`
	RedemptionRate    *float64        `json:"redemption_rate" binding:"omitempty,gte=0,lte=1"`
	CIK               *string         `json:"cik" binding:"omitempty,cik"`
	Exchange          string          `json:"exchange" binding:"max=20"`
	Sponsor           string          `json:"sponsor" binding:"max=200"`
}

// UpdateSPACRequest represents the request payload for updating a SPAC.
// Omitted fields are left unchanged.
type UpdateSPACRequest struct {
	Name              *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Ticker            *string  `json:"ticker" binding:"omitempty,ticker"`
	IPODate           *string  `json:"ipo_date"`
	DeadlineDate      *string  `json:"deadline_date"`
	SharesOutstanding *int64   `json:"shares_outstanding" binding:"omitempty,gte=0"`
	RedemptionRate    *float64 `json:"redemption_rate" binding:"omitempty,gte=0,lte=1"`
	CIK               *string  `json:"cik" binding:"omitempty,cik"`
	Exchange          *string  `json:"exchange" binding:"omitempty,max=20"`
	Sponsor           *string  `json:"sponsor" binding:"omitempty,max=200"`
}

// AdvancePhaseRequest represents the request payload for moving a SPAC forward
type AdvancePhaseRequest struct {
	Phase models.SPACPhase `json:"phase" binding:"required,spac_phase"`
}

// UpdateSPACStatusRequest represents the request payload for a status change
type UpdateSPACStatusRequest struct {
	Status models.SPACStatus `json:"status" binding:"required,spac_status"`
}

// CreateSPAC handles the creation of a new SPAC
// @Summary     Create a SPAC
// @Description Create a new SPAC in the caller's organization
// @Tags        spacs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSPACRequest true "SPAC details"
// @Success     201 {object} models.SPAC "SPAC created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Duplicate ticker"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs [post]
func (h *SPACHandler) CreateSPAC(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSPACRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	ipoDate, err := parseDate("ipo_date", req.IPODate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	deadlineDate, err := parseDate("deadline_date", req.DeadlineDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	spac, err := h.spacService.CreateSPAC(ac, services.SPACInput{
		Name:              req.Name,
		Ticker:            req.Ticker,
		IPODate:           ipoDate,
		DeadlineDate:      deadlineDate,
		TrustAmount:       req.TrustAmount,
		SharesOutstanding: req.SharesOutstanding,
		RedemptionRate:    req.RedemptionRate,
		CIK:               req.CIK,
		Exchange:          req.Exchange,
		Sponsor:           req.Sponsor,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "CREATE_SPAC", "spac", spac.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "ticker": req.Ticker})

	c.JSON(http.StatusCreated, gin.H{"spac": spac})
}

// ListSPACs handles the retrieval of the organization's SPACs
// @Summary     List SPACs
// @Description Get a paginated list of SPACs, optionally filtered by status, phase or a name/ticker search
// @Tags        spacs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       status    query string false "SPAC status"
// @Param       phase     query string false "SPAC phase"
// @Param       search    query string false "Name or ticker search"
// @Success     200 {object} pagination.PageResponse[models.SPAC] "Paginated SPACs"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs [get]
func (h *SPACHandler) ListSPACs(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter := services.SPACFilter{Search: c.Query("search")}
	if v := c.Query("status"); v != "" {
		status, err := models.ParseSPACStatus(v)
		if err != nil {
			respondWithError(c, enumError(err))
			return
		}
		filter.Status = &status
	}
	if v := c.Query("phase"); v != "" {
		phase, err := models.ParseSPACPhase(v)
		if err != nil {
			respondWithError(c, enumError(err))
			return
		}
		filter.Phase = &phase
	}

	result, err := h.spacService.ListSPACs(ac, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSPAC handles the retrieval of a single SPAC
// @Summary     Get SPAC by ID
// @Description Get a SPAC with its related record counts
// @Tags        spacs
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "SPAC ID"
// @Success     200 {object} models.SPAC "SPAC details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id} [get]
func (h *SPACHandler) GetSPAC(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	spac, err := h.spacService.GetSPAC(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spac": spac})
}

// UpdateSPAC handles updating a SPAC's descriptive fields
// @Summary     Update SPAC
// @Description Update an existing SPAC. Status and phase have their own endpoints.
// @Tags        spacs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "SPAC ID"
// @Param       request body UpdateSPACRequest true "Updated SPAC details"
// @Success     200 {object} models.SPAC "Updated SPAC"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id} [put]
func (h *SPACHandler) UpdateSPAC(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSPACRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	ipoDate, err := parseOptionalDate("ipo_date", req.IPODate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	deadlineDate, err := parseOptionalDate("deadline_date", req.DeadlineDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	spac, err := h.spacService.UpdateSPAC(ac, id, services.SPACUpdate{
		Name:              req.Name,
		Ticker:            req.Ticker,
		IPODate:           ipoDate,
		DeadlineDate:      deadlineDate,
		SharesOutstanding: req.SharesOutstanding,
		RedemptionRate:    req.RedemptionRate,
		CIK:               req.CIK,
		Exchange:          req.Exchange,
		Sponsor:           req.Sponsor,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_SPAC", "spac", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"spac": spac})
}

// DeleteSPAC handles soft-deleting a SPAC
// @Summary     Delete SPAC
// @Description Soft-delete a SPAC. Requires the admin role.
// @Tags        spacs
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "SPAC ID"
// @Success     200 {object} map[string]string "SPAC deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id} [delete]
func (h *SPACHandler) DeleteSPAC(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.spacService.DeleteSPAC(ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_SPAC", "spac", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "SPAC deleted successfully"})
}

// AdvancePhase handles moving a SPAC to a later lifecycle phase
// @Summary     Advance SPAC phase
// @Description Move a SPAC forward through its lifecycle. Phases never move backwards.
// @Tags        spacs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "SPAC ID"
// @Param       request body AdvancePhaseRequest true "Target phase"
// @Success     200 {object} models.SPAC "Updated SPAC"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     409 {object} ErrorResponse "Invalid phase transition"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/phase [post]
func (h *SPACHandler) AdvancePhase(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AdvancePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("id")
	spac, err := h.spacService.AdvancePhase(ac, id, req.Phase)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "ADVANCE_PHASE", "spac", id, c.ClientIP(),
		map[string]interface{}{"phase": req.Phase})

	c.JSON(http.StatusOK, gin.H{"spac": spac})
}

// UpdateStatus handles a SPAC status change
// @Summary     Change SPAC status
// @Description Change a SPAC's status. Completed and liquidated SPACs cannot change.
// @Tags        spacs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "SPAC ID"
// @Param       request body UpdateSPACStatusRequest true "New status"
// @Success     200 {object} models.SPAC "Updated SPAC"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     409 {object} ErrorResponse "Invalid status transition"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/status [post]
func (h *SPACHandler) UpdateStatus(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSPACStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("id")
	spac, err := h.spacService.UpdateStatus(ac, id, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_SPAC_STATUS", "spac", id, c.ClientIP(),
		map[string]interface{}{"status": req.Status})

	c.JSON(http.StatusOK, gin.H{"spac": spac})
}

// GetMetrics handles the retrieval of a SPAC's derived metrics
// @Summary     Get SPAC metrics
// @Description Deadline urgency, trust per share and redemption impact for one SPAC
// @Tags        spacs
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "SPAC ID"
// @Success     200 {object} services.SPACMetrics "SPAC metrics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     422 {object} ErrorResponse "Stored value outside its vocabulary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/metrics [get]
func (h *SPACHandler) GetMetrics(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	metrics, err := h.spacService.GetMetrics(ac, c.Param("id"), time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetTimeline handles the retrieval of a SPAC's event timeline
// @Summary     Get SPAC timeline
// @Description Lifecycle milestones, tasks and filings of a SPAC in date order
// @Tags        spacs
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "SPAC ID"
// @Success     200 {array}  analytics.TimelineEvent "Timeline events"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/timeline [get]
func (h *SPACHandler) GetTimeline(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	events, err := h.spacService.GetTimeline(ac, c.Param("id"), time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
