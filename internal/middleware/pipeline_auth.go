package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
)

var (
	errPipelineNotConfigured = &apperrors.AppError{
		Code:       "PIPELINE_NOT_CONFIGURED",
		Message:    "Pipeline endpoints are not configured",
		StatusCode: http.StatusServiceUnavailable,
	}
	errInvalidPipelineKey = &apperrors.AppError{
		Code:       "INVALID_API_KEY",
		Message:    "Invalid or missing API key",
		StatusCode: http.StatusUnauthorized,
	}
)

// PipelineAuthMiddleware guards the machine endpoints (trust snapshots,
// EDGAR sync trigger) with a shared X-API-Key. With no key configured the
// endpoints are unavailable rather than open.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWith(c, errPipelineNotConfigured, errPipelineNotConfigured.Message)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			logger.Get().Warnw("Rejected pipeline request",
				"request_id", RequestID(c), "path", c.FullPath(), "client_ip", c.ClientIP())
			abortWith(c, errInvalidPipelineKey, errInvalidPipelineKey.Message)
			return
		}
		c.Set("authMethod", "pipeline")
		c.Next()
	}
}
