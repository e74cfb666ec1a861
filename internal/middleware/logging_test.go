package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "spacos/internal/errors"
	"spacos/internal/observability"
)

func TestRequestLogging_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", "trace-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "trace-123" {
			t.Errorf("expected echoed id, got %q", got)
		}
		if rec.Body.String() != "trace-123" {
			t.Errorf("expected id in context, got %q", rec.Body.String())
		}
	})

	t.Run("generates id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
			t.Errorf("expected generated uuid, got %q", got)
		}
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", strings.Repeat("x", 100))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
			t.Errorf("expected generated uuid, got %q", got)
		}
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrSPACNotFound)
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db exploded"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", http.NoBody))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := errorCode(t, rec); got != apperrors.ErrSPACNotFound.Code {
		t.Errorf("expected %s, got %s", apperrors.ErrSPACNotFound.Code, got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db exploded") {
		t.Error("internal error details leaked")
	}
}

func TestMetrics(t *testing.T) {
	t.Run("records matched route", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := observability.New("spacos", reg)

		r := gin.New()
		r.Use(Metrics(m))
		r.GET("/spacs/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/spacs/abc", http.NoBody))
		}

		count, err := testutil.GatherAndCount(reg, "spacos_http_requests_total")
		if err != nil {
			t.Fatalf("gather: %v", err)
		}
		if count != 1 {
			t.Errorf("expected one series for the route template, got %d", count)
		}
	})

	t.Run("nil metrics is a no-op", func(t *testing.T) {
		r := gin.New()
		r.Use(Metrics(nil))
		r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

		start := time.Now()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", http.NoBody))
		if rec.Code != http.StatusOK || time.Since(start) > time.Second {
			t.Errorf("unexpected response %d", rec.Code)
		}
	})
}
