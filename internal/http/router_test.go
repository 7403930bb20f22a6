package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/relay/internal/config"
	eventDomain "github.com/allisson/relay/internal/event/domain"
	eventHTTP "github.com/allisson/relay/internal/event/http"
	eventMocks "github.com/allisson/relay/internal/event/usecase/mocks"
	"github.com/allisson/relay/internal/metrics"
	pipelineHTTP "github.com/allisson/relay/internal/pipeline/http"
	pipelineMocks "github.com/allisson/relay/internal/pipeline/usecase/mocks"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
	sourceHTTP "github.com/allisson/relay/internal/source/http"
	sourceMocks "github.com/allisson/relay/internal/source/usecase/mocks"
)

const testAdminToken = "admin-token"

// stubTokenService accepts exactly testAdminToken against the hash "stored-hash".
type stubTokenService struct{}

func (stubTokenService) GenerateToken() (string, string, error) { return testAdminToken, "stored-hash", nil }

func (stubTokenService) HashToken(string) (string, error) { return "stored-hash", nil }

func (stubTokenService) VerifyToken(plainToken, tokenHash string) bool {
	return plainToken == testAdminToken && tokenHash == "stored-hash"
}

type routerMocks struct {
	sources   *sourceMocks.MockSourceUseCase
	pipelines *pipelineMocks.MockPipelineUseCase
	ingest    *eventMocks.MockIngestUseCase
	events    *eventMocks.MockEventUseCase
	requeue   *eventMocks.MockRequeueUseCase
	stats     *eventMocks.MockStatsUseCase
}

func newRoutedServer(t *testing.T, cfg *config.Config, provider *metrics.Provider) (*Server, *routerMocks) {
	t.Helper()
	return newRoutedServerWith(t, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, provider)
}

// newRoutedServerWith builds the full API router over mocked use cases.
func newRoutedServerWith(
	t *testing.T,
	db *sql.DB,
	logger *slog.Logger,
	cfg *config.Config,
	provider *metrics.Provider,
) (*Server, *routerMocks) {
	t.Helper()

	m := &routerMocks{
		sources:   &sourceMocks.MockSourceUseCase{},
		pipelines: &pipelineMocks.MockPipelineUseCase{},
		ingest:    &eventMocks.MockIngestUseCase{},
		events:    &eventMocks.MockEventUseCase{},
		requeue:   &eventMocks.MockRequeueUseCase{},
		stats:     &eventMocks.MockStatsUseCase{},
	}

	server := NewServer(db, "localhost", 0, logger)
	t.Cleanup(server.cancel)

	server.SetupRouter(cfg, Handlers{
		Source:   sourceHTTP.NewSourceHandler(m.sources, logger),
		Pipeline: pipelineHTTP.NewPipelineHandler(m.pipelines, logger),
		Ingest:   eventHTTP.NewIngestHandler(m.ingest, logger),
		Event:    eventHTTP.NewEventHandler(m.events, m.requeue, m.stats, logger),
	}, stubTokenService{}, provider)

	return server, m
}

func serve(server *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(w, req)
	return w
}

func adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func TestSetupRouter_AdminRoutesRequireToken(t *testing.T) {
	server, m := newRoutedServer(t, &config.Config{AdminTokenHash: "stored-hash"}, nil)

	adminRoutes := []struct{ method, path string }{
		{http.MethodGet, "/v1/sources"},
		{http.MethodPost, "/v1/sources/" + uuid.NewString() + "/keys/rotate"},
		{http.MethodGet, "/v1/pipelines"},
		{http.MethodPost, "/v1/pipelines/" + uuid.NewString() + "/requeue"},
		{http.MethodGet, "/v1/events"},
		{http.MethodGet, "/v1/outbound-events"},
		{http.MethodGet, "/v1/stats"},
	}
	for _, route := range adminRoutes {
		w := serve(server, route.method, route.path, "", map[string]string{"Authorization": "Bearer wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}

	m.sources.On("List", mock.Anything, 0, 50).Return([]*sourceDomain.Source{}, nil).Once()
	w := serve(server, http.MethodGet, "/v1/sources", "", adminHeaders())
	assert.Equal(t, http.StatusOK, w.Code)
	m.sources.AssertExpectations(t)
}

func TestSetupRouter_IngestIsPublic(t *testing.T) {
	server, m := newRoutedServer(t, &config.Config{AdminTokenHash: "stored-hash"}, nil)
	sourceID := uuid.Must(uuid.NewV7())
	event := &eventDomain.InboundEvent{
		ID:       uuid.Must(uuid.NewV7()),
		SourceID: sourceID,
		State:    eventDomain.StateQueued,
	}

	source := &sourceDomain.Source{ID: sourceID, IsActive: true, IsSecured: true}

	m.ingest.On("Authenticate", mock.Anything, sourceID, "source-key").Return(source, nil).Once()
	m.ingest.On("Ingest", mock.Anything, source, []byte(`{"a":1}`)).Return(event, nil).Once()

	w := serve(server, http.MethodPost, "/v1/sources/"+sourceID.String()+"/events", `{"a":1}`,
		map[string]string{eventHTTP.SourceKeyHeader: "source-key"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	m.ingest.AssertExpectations(t)
}

func TestSetupRouter_IngestRateLimit(t *testing.T) {
	cfg := &config.Config{
		AdminTokenHash:                "stored-hash",
		IngestRateLimitEnabled:        true,
		IngestRateLimitRequestsPerSec: 0.1,
		IngestRateLimitBurst:          1,
	}

	t.Run("AuthenticatedSourceIsThrottled", func(t *testing.T) {
		server, m := newRoutedServer(t, cfg, nil)
		sourceID := uuid.Must(uuid.NewV7())
		source := &sourceDomain.Source{ID: sourceID, IsActive: true}
		event := &eventDomain.InboundEvent{ID: uuid.Must(uuid.NewV7()), SourceID: sourceID, State: eventDomain.StateQueued}

		m.ingest.On("Authenticate", mock.Anything, sourceID, "").Return(source, nil).Twice()
		m.ingest.On("Ingest", mock.Anything, source, mock.Anything).Return(event, nil).Once()

		path := "/v1/sources/" + sourceID.String() + "/events"
		first := serve(server, http.MethodPost, path, `{}`, map[string]string{"X-Forwarded-For": "10.0.0.1"})
		second := serve(server, http.MethodPost, path, `{}`, map[string]string{"X-Forwarded-For": "10.0.0.2"})

		assert.Equal(t, http.StatusAccepted, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		m.ingest.AssertExpectations(t)
	})

	t.Run("UnauthenticatedFloodDoesNotThrottleSource", func(t *testing.T) {
		server, m := newRoutedServer(t, cfg, nil)
		sourceID := uuid.Must(uuid.NewV7())
		source := &sourceDomain.Source{ID: sourceID, IsActive: true, IsSecured: true}
		event := &eventDomain.InboundEvent{ID: uuid.Must(uuid.NewV7()), SourceID: sourceID, State: eventDomain.StateQueued}
		path := "/v1/sources/" + sourceID.String() + "/events"

		m.ingest.On("Authenticate", mock.Anything, sourceID, "guess").
			Return(nil, sourceDomain.ErrSourceKeyMismatch).Once()
		m.ingest.On("Authenticate", mock.Anything, sourceID, "real-key").Return(source, nil).Once()
		m.ingest.On("Ingest", mock.Anything, source, mock.Anything).Return(event, nil).Once()

		attacker := map[string]string{"X-Forwarded-For": "203.0.113.9", eventHTTP.SourceKeyHeader: "guess"}
		assert.Equal(t, http.StatusUnauthorized, serve(server, http.MethodPost, path, `{}`, attacker).Code)
		for range 5 {
			assert.Equal(t, http.StatusTooManyRequests, serve(server, http.MethodPost, path, `{}`, attacker).Code)
		}

		legit := map[string]string{"X-Forwarded-For": "198.51.100.7", eventHTTP.SourceKeyHeader: "real-key"}
		assert.Equal(t, http.StatusAccepted, serve(server, http.MethodPost, path, `{}`, legit).Code)
		m.ingest.AssertExpectations(t)
	})

	t.Run("InvalidSourceIDIsRejectedWithoutBucket", func(t *testing.T) {
		server, _ := newRoutedServer(t, cfg, nil)

		for range 3 {
			w := serve(server, http.MethodPost, "/v1/sources/not-a-uuid/events", `{}`, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		}
	})
}

func TestSetupRouter_MetricsMiddleware(t *testing.T) {
	provider, err := metrics.NewProvider("relay_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	server, _ := newRoutedServer(t, &config.Config{MetricsNamespace: "relay_test"}, provider)

	assert.Equal(t, http.StatusOK, serve(server, http.MethodGet, "/health", "", nil).Code)
	// metrics are served by the metrics server only
	assert.Equal(t, http.StatusNotFound, serve(server, http.MethodGet, "/metrics", "", nil).Code)

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "relay_test_http_requests_total")
}

func TestReadinessHandler_DatabasePing(t *testing.T) {
	db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	server, _ := newRoutedServerWith(t, db, slog.New(slog.NewTextHandler(io.Discard, nil)), &config.Config{}, nil)
	router := server.GetHandler()

	sqlMock.ExpectPing()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeJSON(t, w)
	assert.Equal(t, "ready", response["status"])
	assert.Equal(t, map[string]any{"database": "ok"}, response["components"])

	sqlMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCustomLoggerMiddleware_LogsRequestID(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	server, _ := newRoutedServerWith(t, nil, logger, &config.Config{}, nil)

	w := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line))
	assert.Equal(t, "http request", line["msg"])
	assert.Equal(t, "/health", line["path"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
	assert.Equal(t, w.Header().Get("X-Request-Id"), line["request_id"])
	assert.Contains(t, line, "latency")
}
