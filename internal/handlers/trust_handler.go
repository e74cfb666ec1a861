package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/services"
)

// TrustHandler handles trust account requests.
type TrustHandler struct {
	trustService services.TrustServicer
	auditService services.AuditServicer
}

// NewTrustHandler creates a new TrustHandler.
func NewTrustHandler(trustService services.TrustServicer, auditService services.AuditServicer) *TrustHandler {
	return &TrustHandler{trustService: trustService, auditService: auditService}
}

// RecordTrustTransactionRequest represents the request payload for a trust movement
type RecordTrustTransactionRequest struct {
	Type        models.TrustTransactionType `json:"type" binding:"required,trust_transaction_type"`
	Amount      decimal.Decimal             `json:"amount" swaggertype:"string"`
	OccurredAt  string                      `json:"occurred_at" binding:"required"`
	Description string                      `json:"description" binding:"max=500"`
}

// RecordTransaction handles recording a trust account movement
// @Summary     Record trust transaction
// @Description Record a deposit, interest accrual, redemption, withdrawal or extension payment
// @Tags        trust
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                        true "SPAC ID"
// @Param       request body RecordTrustTransactionRequest true "Movement details"
// @Success     201 {object} models.TrustTransaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient trust"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/trust/transactions [post]
func (h *TrustHandler) RecordTransaction(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordTrustTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	occurredAt, err := parseDate("occurred_at", req.OccurredAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	spacID := c.Param("id")
	txn, err := h.trustService.RecordTransaction(ac, services.TrustTransactionInput{
		SPACID:      spacID,
		Type:        req.Type,
		Amount:      req.Amount,
		OccurredAt:  *occurredAt,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "RECORD_TRUST_TRANSACTION", "spac", spacID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// ListTransactions handles listing a SPAC's trust movements
// @Summary     List trust transactions
// @Tags        trust
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "SPAC ID"
// @Param       from_date query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       type      query string false "Transaction type"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.TrustTransaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/trust/transactions [get]
func (h *TrustHandler) ListTransactions(c *gin.Context) {
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

	var filter services.TrustFilter
	if filter.FromDate, err = parseDate("from_date", c.Query("from_date")); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = parseDate("to_date", c.Query("to_date")); err != nil {
		respondWithError(c, err)
		return
	}
	if v := c.Query("type"); v != "" {
		txType, err := models.ParseTrustTransactionType(v)
		if err != nil {
			respondWithError(c, enumError(err))
			return
		}
		filter.Type = &txType
	}

	result, err := h.trustService.ListTransactions(ac, c.Param("id"), page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteTransaction handles removing a trust movement
// @Summary     Delete trust transaction
// @Description Delete a movement and reverse its effect on the trust balance
// @Tags        trust
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /trust/transactions/{id} [delete]
func (h *TrustHandler) DeleteTransaction(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.trustService.DeleteTransaction(ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_TRUST_TRANSACTION", "trust_transaction", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// GetBalance handles the retrieval of a SPAC's trust balance
// @Summary     Trust balance
// @Description Current balance with deposits, outflows, per-share value and redemption impact
// @Tags        trust
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "SPAC ID"
// @Success     200 {object} services.TrustBalance "Trust balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spacs/{id}/trust [get]
func (h *TrustHandler) GetBalance(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.trustService.GetBalance(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// ListSnapshots handles retrieving a SPAC's recorded trust balances
// @Summary     Trust snapshots
// @Description Paginated trust balance snapshots for a date range
// @Tags        trust
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "SPAC ID"
// @Param       from_date query string true  "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string true  "End date (RFC3339 or YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.TrustSnapshot] "Paginated snapshots"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SPAC not found"
// @Router      /spacs/{id}/trust/snapshots [get]
func (h *TrustHandler) ListSnapshots(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if c.Query("from_date") == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date is required"))
		return
	}
	from, err := parseDate("from_date", c.Query("from_date"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	if c.Query("to_date") == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date is required"))
		return
	}
	to, err := parseDate("to_date", c.Query("to_date"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.trustService.ListSnapshots(ac, c.Param("id"), *from, *to, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
