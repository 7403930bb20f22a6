package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/relay/internal/errors"
)

// assertBizMetricLine checks that the Prometheus output contains a business metric
// matching the given name, partial label pattern, and value. Uses regex to handle
// extra OTel scope labels injected by the Prometheus exporter.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestOperationStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Success", nil, StatusSuccess},
		{"NotFound", apperrors.Wrap(apperrors.ErrNotFound, "source not found"), StatusRejected},
		{"BadSourceKey", apperrors.ErrAuthenticationFailed, StatusRejected},
		{"InvalidPayload", apperrors.Wrap(apperrors.ErrInvalidInput, "payload must be a JSON object"), StatusRejected},
		{"Conflict", apperrors.ErrConflict, StatusRejected},
		{"RateLimited", apperrors.ErrTooManyRequests, StatusRejected},
		{"DispatchFailed", apperrors.ErrDispatchFailed, StatusError},
		{"Infrastructure", errors.New("driver: bad connection"), StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OperationStatus(tt.err))
		})
	}
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()
	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)

	assert.NotPanics(t, func() {
		noOpMetrics.RecordOperation(context.Background(), "sources", "source_create", StatusSuccess)
		noOpMetrics.RecordDuration(context.Background(), "pipelines", "pipeline_import", time.Second, StatusError)
		Observe(context.Background(), noOpMetrics, "events", "event_ingest", time.Now(), nil)
	})
}

func TestBusinessMetrics_Exported(t *testing.T) {
	provider, err := NewProvider("relay_biz_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "relay_biz_test")
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Now()
	Observe(ctx, bm, "events", "event_ingest", start, nil)
	Observe(ctx, bm, "events", "event_ingest", start, nil)
	Observe(ctx, bm, "events", "event_ingest", start, apperrors.ErrAuthenticationFailed)
	Observe(ctx, bm, "sources", "source_rotate_keys", start, errors.New("connection reset"))
	bm.RecordOperation(ctx, "pipelines", "pipeline_import", StatusSuccess)

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	output := w.Body.String()

	assertBizMetricLine(t, output, `relay_biz_test_operations_total`,
		`domain="events".*operation="event_ingest".*status="success"`, `2`)
	assertBizMetricLine(t, output, `relay_biz_test_operations_total`,
		`domain="events".*operation="event_ingest".*status="rejected"`, `1`)
	assertBizMetricLine(t, output, `relay_biz_test_operations_total`,
		`domain="sources".*operation="source_rotate_keys".*status="error"`, `1`)
	assertBizMetricLine(t, output, `relay_biz_test_operations_total`,
		`domain="pipelines".*operation="pipeline_import".*status="success"`, `1`)
	assertBizMetricLine(t, output, `relay_biz_test_operation_duration_seconds_count`,
		`domain="events".*operation="event_ingest".*status="success"`, `2`)
}
