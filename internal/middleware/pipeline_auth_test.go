package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const pipelineKey = "pk-trust-feed"

func setupPipelineRouter(apiKey string) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogging())
	r.POST("/pipeline/trust-snapshots", PipelineAuthMiddleware(apiKey), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"auth_method": c.GetString("authMethod")})
	})
	return r
}

func doPipelineRequest(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pipeline/trust-snapshots", http.NoBody)
	if value != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func TestPipelineAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		value      string
		wantStatus int
		wantCode   string
	}{
		{name: "matching key", configured: pipelineKey, header: "X-API-Key", value: pipelineKey, wantStatus: http.StatusOK},
		{name: "wrong key", configured: pipelineKey, header: "X-API-Key", value: "pk-other", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_API_KEY"},
		{name: "prefix of key", configured: pipelineKey, header: "X-API-Key", value: "pk-trust", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_API_KEY"},
		{name: "no key", configured: pipelineKey, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_API_KEY"},
		{name: "bearer is not accepted", configured: pipelineKey, header: "Authorization", value: "Bearer " + pipelineKey, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_API_KEY"},
		{name: "unconfigured with key", configured: "", header: "X-API-Key", value: "anything", wantStatus: http.StatusServiceUnavailable, wantCode: "PIPELINE_NOT_CONFIGURED"},
		{name: "unconfigured without key", configured: "", wantStatus: http.StatusServiceUnavailable, wantCode: "PIPELINE_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPipelineRequest(setupPipelineRouter(tt.configured), tt.header, tt.value)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := parseBody(t, rec)
			if tt.wantCode != "" {
				errObj, ok := body["error"].(map[string]interface{})
				if !ok {
					t.Fatal("expected error object in response")
				}
				if code, _ := errObj["code"].(string); code != tt.wantCode {
					t.Errorf("error code = %q, want %q", code, tt.wantCode)
				}
				return
			}
			if body["auth_method"] != "pipeline" {
				t.Errorf("expected pipeline auth method, got %v", body["auth_method"])
			}
		})
	}
}
