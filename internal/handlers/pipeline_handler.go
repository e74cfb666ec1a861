package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spacos/internal/edgar"
	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
	"spacos/internal/services"
)

// EdgarRunner runs one EDGAR sync pass over every syncable SPAC.
type EdgarRunner interface {
	RunOnce(ctx context.Context) (edgar.RunSummary, error)
}

// PipelineHandler serves the machine endpoints driven by schedulers.
type PipelineHandler struct {
	trustService services.TrustServicer
	edgarRunner  EdgarRunner
}

// NewPipelineHandler creates a new PipelineHandler. edgarRunner may be nil
// when EDGAR sync is disabled.
func NewPipelineHandler(trustService services.TrustServicer, edgarRunner EdgarRunner) *PipelineHandler {
	return &PipelineHandler{trustService: trustService, edgarRunner: edgarRunner}
}

// RecordTrustSnapshotsRequest optionally pins the snapshot time.
type RecordTrustSnapshotsRequest struct {
	RecordedAt string `json:"recorded_at"`
}

// RecordTrustSnapshots handles the daily trust balance snapshot
// @Summary     Record trust snapshots
// @Description Store the current trust balance of every live SPAC. Called by the scheduler.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string                       true  "Pipeline API key"
// @Param       request   body   RecordTrustSnapshotsRequest false "Snapshot time (defaults to now)"
// @Success     200 {object} map[string]int "Snapshots recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/trust-snapshots [post]
func (h *PipelineHandler) RecordTrustSnapshots(c *gin.Context) {
	var req RecordTrustSnapshotsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != "" {
		t, err := parseDate("recorded_at", req.RecordedAt)
		if err != nil {
			respondWithError(c, err)
			return
		}
		recordedAt = t.UTC()
	}

	n, err := h.trustService.RecordSnapshots(recordedAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("Trust snapshots recorded", "count", n, "recorded_at", recordedAt)
	c.JSON(http.StatusOK, gin.H{"snapshots_recorded": n})
}

// EdgarSync handles an on-demand EDGAR sync pass
// @Summary     Run EDGAR sync
// @Description Sync filings for every SPAC with a CIK. Per-SPAC failures are counted, not fatal.
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} edgar.RunSummary "Sync summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     502 {object} ErrorResponse "EDGAR unavailable"
// @Failure     503 {object} ErrorResponse "EDGAR sync disabled"
// @Router      /pipeline/edgar-sync [post]
func (h *PipelineHandler) EdgarSync(c *gin.Context) {
	if h.edgarRunner == nil {
		respondWithError(c, errEdgarSyncDisabled)
		return
	}

	summary, err := h.edgarRunner.RunOnce(c.Request.Context())
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrEdgarUnavailable, err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

var errEdgarSyncDisabled = &apperrors.AppError{
	Code:       "EDGAR_SYNC_DISABLED",
	Message:    "EDGAR sync is not enabled",
	StatusCode: http.StatusServiceUnavailable,
}
