package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"spacos/internal/services"
)

// ScoreHandler handles target evaluation requests.
type ScoreHandler struct {
	scoreService services.ScoreServicer
	auditService services.AuditServicer
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(scoreService services.ScoreServicer, auditService services.AuditServicer) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService, auditService: auditService}
}

// RecordScoreRequest represents a completed evaluation entered by hand or
// by an external process
type RecordScoreRequest struct {
	OverallScore int             `json:"overall_score" binding:"gte=0,lte=100"`
	Management   *int            `json:"management" binding:"omitempty,gte=0,lte=100"`
	Market       *int            `json:"market" binding:"omitempty,gte=0,lte=100"`
	Financial    *int            `json:"financial" binding:"omitempty,gte=0,lte=100"`
	Operational  *int            `json:"operational" binding:"omitempty,gte=0,lte=100"`
	Transaction  *int            `json:"transaction" binding:"omitempty,gte=0,lte=100"`
	Thesis       string          `json:"thesis" binding:"max=5000"`
	Model        string          `json:"model" binding:"max=100"`
	RawResponse  json.RawMessage `json:"raw_response" swaggertype:"object"`
}

// RecordScore handles appending a score to a target's history
// @Summary     Record a score
// @Description Append an evaluation to the target's score history and return the updated trend
// @Tags        scores
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Target ID"
// @Param       request body RecordScoreRequest true "Score"
// @Success     201 {object} services.ScoreHistory "Updated history"
// @Failure     400 {object} ErrorResponse "Score out of range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Target not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets/{id}/scores [post]
func (h *ScoreHandler) RecordScore(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("id")
	history, err := h.scoreService.RecordScore(ac, id, services.ScoreInput{
		OverallScore: req.OverallScore,
		Management:   req.Management,
		Market:       req.Market,
		Financial:    req.Financial,
		Operational:  req.Operational,
		Transaction:  req.Transaction,
		Thesis:       req.Thesis,
		Model:        req.Model,
		RawResponse:  req.RawResponse,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "RECORD_SCORE", "target", id, c.ClientIP(),
		map[string]interface{}{"overall_score": req.OverallScore})

	c.JSON(http.StatusCreated, history)
}

// ScoreTarget handles requesting an AI evaluation of a target
// @Summary     Evaluate a target
// @Description Ask the scoring service to evaluate the target and append the result
// @Tags        scores
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Target ID"
// @Success     201 {object} services.ScoreHistory "Updated history"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Target not found"
// @Failure     502 {object} ErrorResponse "Scoring service unavailable"
// @Router      /targets/{id}/scores/evaluate [post]
func (h *ScoreHandler) ScoreTarget(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	history, err := h.scoreService.ScoreTarget(c.Request.Context(), ac, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "SCORE_TARGET", "target", id, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, history)
}

// GetHistory handles the retrieval of a target's score history
// @Summary     Score history
// @Description Newest-first score history with trend, average and sparkline
// @Tags        scores
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Target ID"
// @Param       limit query int    false "Entries to return (default 50, max 500)"
// @Success     200 {object} services.ScoreHistory "History"
// @Failure     400 {object} ErrorResponse "Invalid limit"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Target not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /targets/{id}/scores [get]
func (h *ScoreHandler) GetHistory(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondWithError(c, err)
		return
	}

	history, err := h.scoreService.GetHistory(ac, c.Param("id"), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
