// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/relay/internal/config"
	"github.com/allisson/relay/internal/metrics"
)

// TestMain sets Gin to test mode and checks that no goroutine outlives the tests.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// logLines parses the JSON access log written during a test.
func logLines(t *testing.T, buf *strings.Builder) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestSetupRouter_Probes(t *testing.T) {
	server, _ := newRoutedServer(t, &config.Config{AdminTokenHash: "stored-hash"}, nil)

	w := serve(server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeJSON(t, w)["status"])

	w = serve(server, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	response := decodeJSON(t, w)
	assert.Equal(t, "not_ready", response["status"])
	assert.Equal(t, map[string]any{"database": "error"}, response["components"])
}

func TestSetupRouter_UnknownRoutes(t *testing.T) {
	server, _ := newRoutedServer(t, &config.Config{AdminTokenHash: "stored-hash"}, nil)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "UnknownPath", method: http.MethodGet, path: "/nonexistent"},
		{name: "IngestWithoutSource", method: http.MethodPost, path: "/v1/sources/events"},
		{name: "UnversionedIngest", method: http.MethodPost, path: "/sources/" + uuid.NewString() + "/events"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, tt.method, tt.path, `{}`, adminHeaders())
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestSetupRouter_RequestIDOnEveryGroup(t *testing.T) {
	server, _ := newRoutedServer(t, &config.Config{AdminTokenHash: "stored-hash"}, nil)

	responses := []*httptest.ResponseRecorder{
		serve(server, http.MethodGet, "/health", "", nil),
		serve(server, http.MethodPost, "/v1/sources/not-a-uuid/events", `{}`, nil),
		serve(server, http.MethodGet, "/v1/sources", "", nil),
	}

	seen := make(map[string]bool)
	for _, w := range responses {
		requestID, err := uuid.Parse(w.Header().Get("X-Request-Id"))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), requestID.Version())
		assert.False(t, seen[requestID.String()], "request ids must be unique")
		seen[requestID.String()] = true
	}
}

func TestCustomLoggerMiddleware_LevelFollowsStatus(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	server, _ := newRoutedServerWith(t, nil, logger, &config.Config{AdminTokenHash: "stored-hash"}, nil)

	serve(server, http.MethodGet, "/health", "", nil)
	serve(server, http.MethodGet, "/v1/sources", "", map[string]string{"Authorization": "Bearer wrong"})

	var access []map[string]any
	for _, line := range logLines(t, &buf) {
		if line["msg"] == "http request" {
			access = append(access, line)
		}
	}
	require.Len(t, access, 2)

	assert.Equal(t, "/health", access[0]["path"])
	assert.Equal(t, "INFO", access[0]["level"])

	assert.Equal(t, "/v1/sources", access[1]["path"])
	assert.Equal(t, float64(http.StatusUnauthorized), access[1]["status"])
	assert.Equal(t, "WARN", access[1]["level"])
}

func TestSetupRouter_RecoversFromHandlerPanic(t *testing.T) {
	server, _ := newRoutedServer(t, &config.Config{AdminTokenHash: "stored-hash"}, nil)

	// The stats mock has no expectations, so the handler panics inside the use case call.
	w := serve(server, http.MethodGet, "/v1/stats", "", adminHeaders())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	// The server keeps serving after the panic.
	assert.Equal(t, http.StatusOK, serve(server, http.MethodGet, "/health", "", nil).Code)
}

func TestServer_StartWithoutRouter(t *testing.T) {
	server := NewServer(nil, "localhost", 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer server.cancel()

	err := server.Start(context.Background())
	assert.Error(t, err)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server, _ := newRoutedServer(t, &config.Config{
		AdminTokenHash:                "stored-hash",
		IngestRateLimitEnabled:        true,
		IngestRateLimitRequestsPerSec: 10,
		IngestRateLimitBurst:          10,
	}, nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	require.NoError(t, server.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not return after shutdown")
	}

	// Shutdown also stops the rate limiter cleanup goroutines; goleak checks it.
	select {
	case <-server.ctx.Done():
	default:
		t.Fatal("server background context was not cancelled")
	}
}

// TestMetricsServer_Endpoints tests the scrape and probe routes of the metrics server.
func TestMetricsServer_Endpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	provider, err := metrics.NewProvider("relay_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	sqlMock.ExpectPing()

	metricsServer := NewMetricsServer(db, "localhost", 8081, logger, provider)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decodeJSON(t, w)["status"])
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

// TestMetricsServer_NotReadyWithoutDB tests that a worker without a database is not ready.
func TestMetricsServer_NotReadyWithoutDB(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metricsServer := NewMetricsServer(nil, "localhost", 8081, logger, nil)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
