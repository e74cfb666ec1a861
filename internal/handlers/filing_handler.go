package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/services"
)

// FilingHandler handles compliance calendar requests.
type FilingHandler struct {
	filingService services.FilingServicer
	auditService  services.AuditServicer
}

// NewFilingHandler creates a new FilingHandler.
func NewFilingHandler(filingService services.FilingServicer, auditService services.AuditServicer) *FilingHandler {
	return &FilingHandler{filingService: filingService, auditService: auditService}
}

// CreateFilingRequest represents the request payload for creating a filing
type CreateFilingRequest struct {
	SPACID          string              `json:"spac_id" binding:"required,uuid"`
	FormType        string              `json:"form_type" binding:"required,min=1,max=20"`
	FiledDate       string              `json:"filed_date"`
	DueDate         string              `json:"due_date"`
	Status          models.FilingStatus `json:"status" binding:"omitempty,filing_status"`
	EdgarURL        string              `json:"edgar_url" binding:"omitempty,url,max=500"`
	AccessionNumber *string             `json:"accession_number" binding:"omitempty,max=25"`
	Description     string              `json:"description" binding:"max=1000"`
}

// UpdateFilingRequest represents the request payload for updating a filing
type UpdateFilingRequest struct {
	FormType        *string              `json:"form_type" binding:"omitempty,min=1,max=20"`
	FiledDate       *string              `json:"filed_date"`
	DueDate         *string              `json:"due_date"`
	Status          *models.FilingStatus `json:"status" binding:"omitempty,filing_status"`
	EdgarURL        *string              `json:"edgar_url" binding:"omitempty,url,max=500"`
	AccessionNumber *string              `json:"accession_number" binding:"omitempty,max=25"`
	Description     *string              `json:"description" binding:"omitempty,max=1000"`
}

// CreateFiling handles the creation of a new filing
// @Summary     Create a filing
// @Tags        filings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateFilingRequest true "Filing details"
// @Success     201 {object} models.Filing "Filing created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     409 {object} ErrorResponse "Duplicate accession number"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /filings [post]
func (h *FilingHandler) CreateFiling(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	filedDate, err := parseDate("filed_date", req.FiledDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filing, err := h.filingService.CreateFiling(ac, services.FilingInput{
		SPACID:          req.SPACID,
		FormType:        req.FormType,
		FiledDate:       filedDate,
		DueDate:         dueDate,
		Status:          req.Status,
		EdgarURL:        req.EdgarURL,
		AccessionNumber: req.AccessionNumber,
		Description:     req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "CREATE_FILING", "filing", filing.ID, c.ClientIP(),
		map[string]interface{}{"form_type": req.FormType, "spac_id": req.SPACID})

	c.JSON(http.StatusCreated, gin.H{"filing": filing})
}

// ListFilings handles the retrieval of filings
// @Summary     List filings
// @Description Paginated filings ordered by due date, undated last
// @Tags        filings
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       spac_id   query string false "SPAC ID"
// @Param       status    query string false "Filing status"
// @Success     200 {object} pagination.PageResponse[models.Filing] "Paginated filings"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /filings [get]
func (h *FilingHandler) ListFilings(c *gin.Context) {
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

	filter := services.FilingFilter{SPACID: optionalQuery(c, "spac_id")}
	if v := c.Query("status"); v != "" {
		status, err := models.ParseFilingStatus(v)
		if err != nil {
			respondWithError(c, enumError(err))
			return
		}
		filter.Status = &status
	}

	result, err := h.filingService.ListFilings(ac, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUpcoming handles the retrieval of filings due soon
// @Summary     Upcoming filings
// @Description Unfiled filings due within the window, overdue ones included, with urgency flags
// @Tags        filings
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Window in days (default 30)"
// @Success     200 {array}  services.UpcomingFiling "Upcoming filings"
// @Failure     400 {object} ErrorResponse "Invalid window"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /filings/upcoming [get]
func (h *FilingHandler) GetUpcoming(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	days, err := queryInt(c, "days", 0)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filings, err := h.filingService.Upcoming(ac, days, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"filings": filings})
}

// GetFiling handles the retrieval of a single filing
// @Summary     Get filing by ID
// @Tags        filings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Filing ID"
// @Success     200 {object} models.Filing "Filing"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Filing not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /filings/{id} [get]
func (h *FilingHandler) GetFiling(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filing, err := h.filingService.GetFiling(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"filing": filing})
}

// UpdateFiling handles updating a filing
// @Summary     Update filing
// @Tags        filings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Filing ID"
// @Param       request body UpdateFilingRequest true "Updated filing details"
// @Success     200 {object} models.Filing "Updated filing"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Filing not found"
// @Failure     409 {object} ErrorResponse "Duplicate accession number"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /filings/{id} [put]
func (h *FilingHandler) UpdateFiling(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	filedDate, err := parseOptionalDate("filed_date", req.FiledDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	filing, err := h.filingService.UpdateFiling(ac, id, services.FilingUpdate{
		FormType:        req.FormType,
		FiledDate:       filedDate,
		DueDate:         dueDate,
		Status:          req.Status,
		EdgarURL:        req.EdgarURL,
		AccessionNumber: req.AccessionNumber,
		Description:     req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_FILING", "filing", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"filing": filing})
}

// DeleteFiling handles deleting a filing
// @Summary     Delete filing
// @Tags        filings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Filing ID"
// @Success     200 {object} map[string]string "Filing deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Filing not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /filings/{id} [delete]
func (h *FilingHandler) DeleteFiling(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.filingService.DeleteFiling(ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_FILING", "filing", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Filing deleted successfully"})
}

// SyncFromEdgar handles pulling a SPAC's filings from SEC EDGAR
// @Summary     Sync filings from EDGAR
// @Description Fetch the SPAC's recent SEC submissions and upsert them by accession number
// @Tags        filings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "SPAC ID"
// @Success     200 {object} edgar.SyncResult "Sync outcome"
// @Failure     400 {object} ErrorResponse "SPAC has no CIK"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     502 {object} ErrorResponse "EDGAR unavailable"
// @Router      /spacs/{id}/filings/sync [post]
func (h *FilingHandler) SyncFromEdgar(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	result, err := h.filingService.SyncFromEdgar(c.Request.Context(), ac, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "SYNC_FILINGS", "spac", id, c.ClientIP(),
		map[string]interface{}{"created": result.Created, "updated": result.Updated})

	c.JSON(http.StatusOK, result)
}
