package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstrumentedRouter(t *testing.T) (*gin.Engine, *Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("relay_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "relay_test"))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.POST("/v1/sources/:id/events", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"state": "QUEUED"})
	})
	router.GET("/v1/pipelines/:id", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	})
	return router, provider
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	t.Run("Success_RecordsRoutePatternAndBodySize", func(t *testing.T) {
		router, provider := newInstrumentedRouter(t)

		for _, id := range []string{"0190d1c2", "0190d1c3"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/sources/"+id+"/events",
				strings.NewReader(`{"ref":"main"}`))
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusAccepted, w.Code)
		}

		body := scrape(t, provider)
		assert.Contains(t, body, "relay_test_http_requests_total")
		assert.Contains(t, body, `path="/v1/sources/:id/events"`)
		assert.Contains(t, body, `status_code="202"`)
		assert.Contains(t, body, "relay_test_http_request_size_bytes")
		assert.NotContains(t, body, "0190d1c2")
	})

	t.Run("Success_RecordsErrorStatus", func(t *testing.T) {
		router, provider := newInstrumentedRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/pipelines/abc", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		assert.Contains(t, scrape(t, provider), `status_code="500"`)
	})

	t.Run("Success_SkipsProbes", func(t *testing.T) {
		router, provider := newInstrumentedRouter(t)

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		assert.NotContains(t, scrape(t, provider), `path="/health"`)
	})
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "RoutePattern", input: "/v1/sources/:id/events", expected: "/v1/sources/:id/events"},
		{name: "EmptyPath", input: "", expected: "unknown"},
		{name: "RootPath", input: "/", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}
