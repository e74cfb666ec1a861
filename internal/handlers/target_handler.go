package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/services"
)

// TargetHandler handles deal pipeline requests.
type TargetHandler struct {
	targetService services.TargetServicer
	auditService  services.AuditServicer
}

// NewTargetHandler creates a new TargetHandler.
func NewTargetHandler(targetService services.TargetServicer, auditService services.AuditServicer) *TargetHandler {
	return &TargetHandler{targetService: targetService, auditService: auditService}
}

// CreateTargetRequest represents the request payload for creating a target
type CreateTargetRequest struct {
	SPACID          *string         `json:"spac_id" binding:"omitempty,uuid"`
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Industry        string          `json:"industry" binding:"max=100"`
	Description     string          `json:"description" binding:"max=2000"`
	Headquarters    string          `json:"headquarters" binding:"max=200"`
	EnterpriseValue decimal.Decimal `json:"enterprise_value" swaggertype:"string"`
}

// UpdateTargetRequest represents the request payload for updating a target
type UpdateTargetRequest struct {
	SPACID          *string          `json:"spac_id" binding:"omitempty,uuid"`
	Name            *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Industry        *string          `json:"industry" binding:"omitempty,max=100"`
	Description     *string          `json:"description" binding:"omitempty,max=2000"`
	Headquarters    *string          `json:"headquarters" binding:"omitempty,max=200"`
	EnterpriseValue *decimal.Decimal `json:"enterprise_value" swaggertype:"string"`
}

// MoveStageRequest represents the request payload for a pipeline stage change
type MoveStageRequest struct {
	Stage  models.DealStage `json:"stage" binding:"required,deal_stage"`
	Reason string           `json:"reason" binding:"max=1000"`
}

// CreateTarget handles the creation of a new acquisition target
// @Summary     Create a target
// @Description Add an acquisition target to the deal pipeline at the sourcing stage
// @Tags        targets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTargetRequest true "Target details"
// @Success     201 {object} models.Target "Target created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets [post]
func (h *TargetHandler) CreateTarget(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	target, err := h.targetService.CreateTarget(ac, services.TargetInput{
		SPACID:          req.SPACID,
		Name:            req.Name,
		Industry:        req.Industry,
		Description:     req.Description,
		Headquarters:    req.Headquarters,
		EnterpriseValue: req.EnterpriseValue,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "CREATE_TARGET", "target", target.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"target": target})
}

// ListTargets handles the retrieval of pipeline targets
// @Summary     List targets
// @Description Get a paginated list of targets with optional filters
// @Tags        targets
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       spac_id   query string false "SPAC ID"
// @Param       stage     query string false "Deal stage"
// @Param       industry  query string false "Industry"
// @Param       min_score query int    false "Minimum evaluation score"
// @Param       search    query string false "Name search"
// @Success     200 {object} pagination.PageResponse[models.Target] "Paginated targets"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets [get]
func (h *TargetHandler) ListTargets(c *gin.Context) {
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

	filter := services.TargetFilter{
		SPACID:   optionalQuery(c, "spac_id"),
		Industry: c.Query("industry"),
		Search:   c.Query("search"),
	}
	if v := c.Query("stage"); v != "" {
		stage, err := models.ParseDealStage(v)
		if err != nil {
			respondWithError(c, enumError(err))
			return
		}
		filter.Stage = &stage
	}
	if c.Query("min_score") != "" {
		minScore, err := queryInt(c, "min_score", 0)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.MinScore = &minScore
	}

	result, err := h.targetService.ListTargets(ac, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTarget handles the retrieval of a single target
// @Summary     Get target by ID
// @Tags        targets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Target ID"
// @Success     200 {object} models.Target "Target details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Target not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets/{id} [get]
func (h *TargetHandler) GetTarget(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	target, err := h.targetService.GetTarget(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"target": target})
}

// UpdateTarget handles updating a target's details
// @Summary     Update target
// @Description Update a target's descriptive fields. Use the stage endpoint to move it through the pipeline.
// @Tags        targets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Target ID"
// @Param       request body UpdateTargetRequest true "Updated target details"
// @Success     200 {object} models.Target "Updated target"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Target not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets/{id} [put]
func (h *TargetHandler) UpdateTarget(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("id")
	target, err := h.targetService.UpdateTarget(ac, id, services.TargetUpdate{
		SPACID:          req.SPACID,
		Name:            req.Name,
		Industry:        req.Industry,
		Description:     req.Description,
		Headquarters:    req.Headquarters,
		EnterpriseValue: req.EnterpriseValue,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_TARGET", "target", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"target": target})
}

// DeleteTarget handles soft-deleting a target
// @Summary     Delete target
// @Tags        targets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Target ID"
// @Success     200 {object} map[string]string "Target deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Target not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets/{id} [delete]
func (h *TargetHandler) DeleteTarget(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.targetService.DeleteTarget(ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_TARGET", "target", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Target deleted successfully"})
}

// MoveStage handles a deal pipeline stage change
// @Summary     Move target stage
// @Description Move a target to another pipeline stage. Passing on a target requires a reason.
// @Tags        targets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Target ID"
// @Param       request body MoveStageRequest true "Target stage"
// @Success     200 {object} models.Target "Updated target"
// @Failure     400 {object} ErrorResponse "Invalid input or missing reason"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Target not found"
// @Failure     409 {object} ErrorResponse "Invalid stage transition"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets/{id}/stage [post]
func (h *TargetHandler) MoveStage(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MoveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("id")
	target, err := h.targetService.MoveStage(ac, id, req.Stage, req.Reason)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "MOVE_STAGE", "target", id, c.ClientIP(),
		map[string]interface{}{"stage": req.Stage, "reason": req.Reason})

	c.JSON(http.StatusOK, gin.H{"target": target})
}

// GetFunnel handles the retrieval of the pipeline funnel
// @Summary     Get pipeline funnel
// @Description Target counts and enterprise value per deal stage, optionally for one SPAC
// @Tags        targets
// @Produce     json
// @Security    BearerAuth
// @Param       spac_id query string false "SPAC ID"
// @Success     200 {array}  analytics.FunnelStage "Funnel stages"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Stored value outside its vocabulary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets/funnel [get]
func (h *TargetHandler) GetFunnel(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	funnel, err := h.targetService.GetFunnel(ac, optionalQuery(c, "spac_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"funnel": funnel})
}
