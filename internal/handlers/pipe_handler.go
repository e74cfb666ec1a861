package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/services"
)

// PipeHandler handles PIPE investor and cap table requests.
type PipeHandler struct {
	pipeService     services.PipeServicer
	capTableService services.CapTableServicer
	auditService    services.AuditServicer
}

// NewPipeHandler creates a new PipeHandler.
func NewPipeHandler(pipeService services.PipeServicer, capTableService services.CapTableServicer, auditService services.AuditServicer) *PipeHandler {
	return &PipeHandler{pipeService: pipeService, capTableService: capTableService, auditService: auditService}
}

// CreateInvestorRequest represents the request payload for a PIPE commitment
type CreateInvestorRequest struct {
	Name               string                    `json:"name" binding:"required,min=1,max=200"`
	Type               models.InvestorType       `json:"type" binding:"omitempty,investor_type"`
	CommitmentAmount   decimal.Decimal           `json:"commitment_amount" swaggertype:"string"`
	PricePerShare      decimal.Decimal           `json:"price_per_share" swaggertype:"string"`
	Shares             int64                     `json:"shares" binding:"gte=0"`
	SubscriptionStatus models.SubscriptionStatus `json:"subscription_status" binding:"omitempty,subscription_status"`
	Notes              string                    `json:"notes" binding:"max=2000"`
}

// UpdateInvestorRequest represents the request payload for changing a PIPE commitment
type UpdateInvestorRequest struct {
	Name               *string                    `json:"name" binding:"omitempty,min=1,max=200"`
	Type               *models.InvestorType       `json:"type" binding:"omitempty,investor_type"`
	CommitmentAmount   *decimal.Decimal           `json:"commitment_amount" swaggertype:"string"`
	PricePerShare      *decimal.Decimal           `json:"price_per_share" swaggertype:"string"`
	Shares             *int64                     `json:"shares" binding:"omitempty,gte=0"`
	SubscriptionStatus *models.SubscriptionStatus `json:"subscription_status" binding:"omitempty,subscription_status"`
	Notes              *string                    `json:"notes" binding:"omitempty,max=2000"`
}

// HolderRequest is one holder of a share class
type HolderRequest struct {
	Name       string            `json:"name" binding:"required,min=1,max=200"`
	HolderType models.HolderType `json:"holder_type" binding:"required,holder_type"`
	Shares     int64             `json:"shares" binding:"gte=0"`
}

// UpsertShareClassRequest represents the request payload for one cap table class
type UpsertShareClassRequest struct {
	TotalShares int64           `json:"total_shares" binding:"gte=0"`
	VotingPower float64         `json:"voting_power" binding:"gte=0"`
	Holders     []HolderRequest `json:"holders" binding:"omitempty,dive"`
}

// CreateInvestor handles recording a PIPE commitment
// @Summary     Add PIPE investor
// @Description Record a PIPE commitment. Shares default to commitment divided by price.
// @Tags        pipe
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "SPAC ID"
// @Param       request body CreateInvestorRequest true "Investor details"
// @Success     201 {object} models.PipeInvestor "Investor created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/pipe/investors [post]
func (h *PipeHandler) CreateInvestor(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	investor, err := h.pipeService.CreateInvestor(ac, services.PipeInvestorInput{
		SPACID:             c.Param("id"),
		Name:               req.Name,
		Type:               req.Type,
		CommitmentAmount:   req.CommitmentAmount,
		PricePerShare:      req.PricePerShare,
		Shares:             req.Shares,
		SubscriptionStatus: req.SubscriptionStatus,
		Notes:              req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "CREATE_PIPE_INVESTOR", "pipe_investor", investor.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "commitment": req.CommitmentAmount.String()})

	c.JSON(http.StatusCreated, gin.H{"investor": investor})
}

// ListInvestors handles listing a SPAC's PIPE investors
// @Summary     List PIPE investors
// @Tags        pipe
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "SPAC ID"
// @Success     200 {array}  models.PipeInvestor "Investors, largest commitment first"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/pipe/investors [get]
func (h *PipeHandler) ListInvestors(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investors, err := h.pipeService.ListInvestors(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investors": investors})
}

// UpdateInvestor handles changing a PIPE commitment
// @Summary     Update PIPE investor
// @Tags        pipe
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       investorId path string                true "Investor ID"
// @Param       request    body UpdateInvestorRequest true "Updated investor details"
// @Success     200 {object} models.PipeInvestor "Updated investor"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investor not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipe/investors/{investorId} [put]
func (h *PipeHandler) UpdateInvestor(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("investorId")
	investor, err := h.pipeService.UpdateInvestor(ac, id, services.PipeInvestorUpdate{
		Name:               req.Name,
		Type:               req.Type,
		CommitmentAmount:   req.CommitmentAmount,
		PricePerShare:      req.PricePerShare,
		Shares:             req.Shares,
		SubscriptionStatus: req.SubscriptionStatus,
		Notes:              req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_PIPE_INVESTOR", "pipe_investor", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"investor": investor})
}

// DeleteInvestor handles removing a PIPE commitment
// @Summary     Delete PIPE investor
// @Tags        pipe
// @Produce     json
// @Security    BearerAuth
// @Param       investorId path string true "Investor ID"
// @Success     200 {object} map[string]string "Investor deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investor not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipe/investors/{investorId} [delete]
func (h *PipeHandler) DeleteInvestor(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("investorId")
	if err := h.pipeService.DeleteInvestor(ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_PIPE_INVESTOR", "pipe_investor", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Investor deleted successfully"})
}

// GetSummary handles the PIPE raise summary
// @Summary     PIPE summary
// @Description Committed and funded totals against the target raise
// @Tags        pipe
// @Produce     json
// @Security    BearerAuth
// @Param       id           path  string true  "SPAC ID"
// @Param       target_raise query string false "Target raise amount"
// @Success     200 {object} analytics.PipeSummary "PIPE summary"
// @Failure     400 {object} ErrorResponse "Invalid target raise"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/pipe [get]
func (h *PipeHandler) GetSummary(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	targetRaise := decimal.Zero
	if v := c.Query("target_raise"); v != "" {
		targetRaise, err = decimal.NewFromString(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid target_raise"))
			return
		}
	}

	summary, err := h.pipeService.GetSummary(ac, c.Param("id"), targetRaise)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpsertShareClass handles replacing one class of the cap table
// @Summary     Upsert share class
// @Description Create or replace a share class and its holders. Holder shares must sum to the class total.
// @Tags        cap-table
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "SPAC ID"
// @Param       class   path string                  true "Share class"
// @Param       request body UpsertShareClassRequest true "Class details"
// @Success     200 {object} models.ShareClass "Saved class"
// @Failure     400 {object} ErrorResponse "Invalid input or holder sum mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/cap-table/{class} [put]
func (h *PipeHandler) UpsertShareClass(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	kind, err := models.ParseShareClassKind(c.Param("class"))
	if err != nil {
		respondWithError(c, enumError(err))
		return
	}

	var req UpsertShareClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	holders := make([]services.HolderInput, len(req.Holders))
	for i, hr := range req.Holders {
		holders[i] = services.HolderInput{Name: hr.Name, HolderType: hr.HolderType, Shares: hr.Shares}
	}

	spacID := c.Param("id")
	class, err := h.capTableService.UpsertShareClass(ac, spacID, services.ShareClassInput{
		Class:       kind,
		TotalShares: req.TotalShares,
		VotingPower: req.VotingPower,
		Holders:     holders,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPSERT_SHARE_CLASS", "spac", spacID, c.ClientIP(),
		map[string]interface{}{"class": kind, "total_shares": req.TotalShares})

	c.JSON(http.StatusOK, gin.H{"share_class": class})
}

// DeleteShareClass handles removing a class from the cap table
// @Summary     Delete share class
// @Tags        cap-table
// @Produce     json
// @Security    BearerAuth
// @Param       id    path string true "SPAC ID"
// @Param       class path string true "Share class"
// @Success     200 {object} map[string]string "Class deleted"
// @Failure     400 {object} ErrorResponse "Unknown class"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Share class not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/cap-table/{class} [delete]
func (h *PipeHandler) DeleteShareClass(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	kind, err := models.ParseShareClassKind(c.Param("class"))
	if err != nil {
		respondWithError(c, enumError(err))
		return
	}

	spacID := c.Param("id")
	if err := h.capTableService.DeleteShareClass(ac, spacID, kind); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_SHARE_CLASS", "spac", spacID, c.ClientIP(),
		map[string]interface{}{"class": kind})

	c.JSON(http.StatusOK, gin.H{"message": "Share class deleted successfully"})
}

// GetCapTable handles the retrieval of the computed cap table
// @Summary     Get cap table
// @Description Ownership per class and holder with fully diluted percentages and validation issues
// @Tags        cap-table
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "SPAC ID"
// @Success     200 {object} services.CapTableView "Cap table"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     422 {object} ErrorResponse "Stored value outside its vocabulary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/cap-table [get]
func (h *PipeHandler) GetCapTable(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.capTableService.GetCapTable(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
