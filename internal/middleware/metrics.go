package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"spacos/internal/observability"
)

// Metrics records request counts and latency by matched route. A nil m
// records nothing.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
