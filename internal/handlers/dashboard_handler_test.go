package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/services"
)

type mockDashboardService struct {
	getOverviewFn func(ctx context.Context, ac auth.Context, now time.Time) (*services.Overview, error)
}

var _ services.DashboardServicer = (*mockDashboardService)(nil)

func (m *mockDashboardService) GetOverview(ctx context.Context, ac auth.Context, now time.Time) (*services.Overview, error) {
	if m.getOverviewFn != nil {
		return m.getOverviewFn(ctx, ac, now)
	}
	return &services.Overview{}, nil
}

func setupDashboardRouter(svc services.DashboardServicer) *gin.Engine {
	h := NewDashboardHandler(svc)
	r := gin.New()
	r.GET("/dashboard", injectAuth(analyst()), h.GetOverview)
	r.GET("/meta/vocabularies", h.GetVocabularies)
	return r
}

func TestDashboardHandler_GetOverview(t *testing.T) {
	t.Run("returns overview", func(t *testing.T) {
		svc := &mockDashboardService{
			getOverviewFn: func(_ context.Context, ac auth.Context, _ time.Time) (*services.Overview, error) {
				if ac.OrgID != testOrgID {
					t.Errorf("expected org %s, got %s", testOrgID, ac.OrgID)
				}
				return &services.Overview{
					StatusCounts:        map[models.SPACStatus]int64{models.SPACStatusActive: 2},
					TotalSPACs:          2,
					ActivePipelineValue: decimal.NewFromInt(1500000000),
				}, nil
			},
		}
		r := setupDashboardRouter(svc)

		rec := doRequest(r, "GET", "/dashboard", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_spacs"].(float64) != 2 {
			t.Errorf("expected total_spacs 2, got %v", result["total_spacs"])
		}
		counts := result["status_counts"].(map[string]interface{})
		if counts["active"].(float64) != 2 {
			t.Errorf("expected 2 active, got %v", counts["active"])
		}
	})

	t.Run("maps corrupt stored status", func(t *testing.T) {
		svc := &mockDashboardService{
			getOverviewFn: func(_ context.Context, _ auth.Context, _ time.Time) (*services.Overview, error) {
				return nil, apperrors.ErrUnknownEnumValue
			},
		}
		r := setupDashboardRouter(svc)

		rec := doRequest(r, "GET", "/dashboard", "")

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNKNOWN_ENUM_VALUE")
	})
}

func TestDashboardHandler_GetVocabularies(t *testing.T) {
	r := setupDashboardRouter(&mockDashboardService{})

	rec := doRequest(r, "GET", "/meta/vocabularies", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	stages, ok := result["deal_stage"].([]interface{})
	if !ok || len(stages) != models.NumDealStages {
		t.Fatalf("expected %d deal stages, got %v", models.NumDealStages, result["deal_stage"])
	}
	first := stages[0].(map[string]interface{})
	if first["value"] != "sourcing" {
		t.Errorf("expected sourcing first, got %v", first["value"])
	}
}
