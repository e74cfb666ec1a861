package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
	"spacos/internal/middleware"
)

// getAuthContext extracts the caller identity stored by AuthMiddleware.
// Returns ErrUnauthorized if not present.
func getAuthContext(c *gin.Context) (auth.Context, error) {
	ac, ok := middleware.GetAuthContext(c)
	if !ok {
		return auth.Context{}, apperrors.ErrUnauthorized
	}
	return ac, nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// Empty input yields nil.
func parseDate(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, v)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", v)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+" format")
		}
	}
	return &parsed, nil
}

// parseOptionalDate is parseDate for pointer fields of update requests.
func parseOptionalDate(field string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	return parseDate(field, *v)
}

// optionalQuery returns a pointer to the query value, or nil when absent.
func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+key)
	}
	return n, nil
}

// vocabularyTags are the binding rules backed by a closed vocabulary.
var vocabularyTags = map[string]bool{
	"spac_status": true, "spac_phase": true, "deal_stage": true,
	"document_status": true, "document_type": true, "task_status": true,
	"task_priority": true, "filing_status": true, "investor_type": true,
	"subscription_status": true, "share_class": true, "holder_type": true,
	"trust_transaction_type": true, "role": true, "billing_plan": true,
	"billing_status": true,
}

// bindError turns a binding failure into a response error. A value outside
// a closed vocabulary is reported as UNKNOWN_ENUM_VALUE, anything else as
// INVALID_INPUT.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if vocabularyTags[fe.Tag()] {
				return apperrors.WithMessage(apperrors.ErrUnknownEnumInput,
					fmt.Sprintf("%s: unknown %s %q", fe.Field(), fe.Tag(), fmt.Sprint(fe.Value())))
			}
		}
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// enumError reports a query parameter outside its vocabulary.
func enumError(err error) error {
	return apperrors.WithMessage(apperrors.ErrUnknownEnumInput, err.Error())
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"request_id", middleware.RequestID(c),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"request_id", middleware.RequestID(c),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
