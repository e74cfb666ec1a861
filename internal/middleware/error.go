package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
)

// ErrorHandler renders the last error attached with c.Error. AppErrors keep
// their code and message; anything else becomes INTERNAL_ERROR and is logged
// with the request ID so the response can be traced back.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		requestID := RequestID(c)
		log := logger.Get()

		appErr := apperrors.ErrInternalServer
		var target *apperrors.AppError
		switch {
		case errors.As(err, &target):
			appErr = target
			if target.Internal != nil {
				log.Errorw("app error",
					"code", target.Code,
					"internal", target.Internal.Error(),
					"request_id", requestID,
					"path", c.Request.URL.Path,
				)
			}
		default:
			log.Errorw("unexpected error",
				"error", err.Error(),
				"request_id", requestID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}

		body := gin.H{"code": appErr.Code, "message": appErr.Message}
		if requestID != "" {
			body["request_id"] = requestID
		}
		c.JSON(appErr.StatusCode, gin.H{"error": body})
	}
}
