package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// withSourceFromPath stands in for the ingestion authentication middleware.
func withSourceFromPath(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}
	source := &sourceDomain.Source{ID: sourceID, IsActive: true}
	c.Request = c.Request.WithContext(WithSource(c.Request.Context(), source))
	c.Next()
}

func newIngestRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.POST("/v1/sources/:id/events",
		withSourceFromPath,
		IngestRateLimitMiddleware(ctx, rps, burst, createTestLogger()),
		func(c *gin.Context) {
			c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
		})
	return router
}

func postEvent(router *gin.Engine, sourceID uuid.UUID) *httptest.ResponseRecorder {
	return postEventFrom(router, sourceID.String(), "192.0.2.10")
}

func postEventFrom(router *gin.Engine, sourceID, clientIP string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sources/"+sourceID+"/events", nil)
	req.Header.Set("X-Forwarded-For", clientIP)
	router.ServeHTTP(w, req)
	return w
}

func TestIngestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := newIngestRouter(t, 10.0, 20)
	sourceID := uuid.Must(uuid.NewV7())

	for range 5 {
		assert.Equal(t, http.StatusAccepted, postEvent(router, sourceID).Code)
	}
}

func TestIngestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	router := newIngestRouter(t, 0.5, 2)
	sourceID := uuid.Must(uuid.NewV7())

	for range 2 {
		assert.Equal(t, http.StatusAccepted, postEvent(router, sourceID).Code)
	}

	w := postEvent(router, sourceID)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)
}

func TestIngestRateLimitMiddleware_SourcesHaveIndependentBuckets(t *testing.T) {
	router := newIngestRouter(t, 0.1, 1)
	noisy := uuid.Must(uuid.NewV7())
	quiet := uuid.Must(uuid.NewV7())

	assert.Equal(t, http.StatusAccepted, postEvent(router, noisy).Code)
	assert.Equal(t, http.StatusTooManyRequests, postEvent(router, noisy).Code)

	assert.Equal(t, http.StatusAccepted, postEvent(router, quiet).Code)
}

func TestIngestRateLimitMiddleware_RequiresAuthenticatedSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.POST("/v1/sources/:id/events",
		IngestRateLimitMiddleware(ctx, 10, 10, createTestLogger()),
		func(c *gin.Context) {
			c.Status(http.StatusAccepted)
		})

	w := postEvent(router, uuid.Must(uuid.NewV7()))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func newClientLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.POST("/v1/sources/:id/events",
		IngestClientRateLimitMiddleware(ctx, rps, burst, createTestLogger()),
		func(c *gin.Context) {
			c.Status(http.StatusAccepted)
		})
	return router
}

func TestIngestClientRateLimitMiddleware(t *testing.T) {
	t.Run("ClientsHaveIndependentBuckets", func(t *testing.T) {
		router := newClientLimitedRouter(t, 0.1, 1)
		sourceID := uuid.Must(uuid.NewV7()).String()

		assert.Equal(t, http.StatusAccepted, postEventFrom(router, sourceID, "203.0.113.9").Code)
		assert.Equal(t, http.StatusTooManyRequests, postEventFrom(router, sourceID, "203.0.113.9").Code)

		assert.Equal(t, http.StatusAccepted, postEventFrom(router, sourceID, "198.51.100.7").Code)
	})

	t.Run("SourcesHaveIndependentBucketsPerClient", func(t *testing.T) {
		router := newClientLimitedRouter(t, 0.1, 1)

		assert.Equal(t, http.StatusAccepted, postEventFrom(router, uuid.NewString(), "203.0.113.9").Code)
		assert.Equal(t, http.StatusAccepted, postEventFrom(router, uuid.NewString(), "203.0.113.9").Code)
	})

	t.Run("InvalidSourceIDAllocatesNoBucket", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := newRateLimiterStore(0.1, 1)
		router := gin.New()
		router.POST("/v1/sources/:id/events",
			ingestClientLimiter(store, createTestLogger()),
			func(c *gin.Context) {
				c.Status(http.StatusAccepted)
			})
		go store.cleanupStale(ctx, time.Hour)

		for _, id := range []string{"x", "not-a-uuid", "12345"} {
			postEventFrom(router, id, "203.0.113.9")
		}

		count := 0
		store.limiters.Range(func(_, _ any) bool {
			count++
			return true
		})
		assert.Zero(t, count)
	})
}

func TestRateLimiterStore_RemoveIdle(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(1, 1)
	store.now = func() time.Time { return current }

	store.getLimiter("old")
	current = current.Add(2 * time.Hour)
	fresh := store.getLimiter("fresh")

	removed := store.removeIdle(current.Add(-limiterIdleTimeout))
	assert.Equal(t, 1, removed)

	_, ok := store.limiters.Load("old")
	assert.False(t, ok)

	// existing limiter is reused
	assert.Same(t, fresh, store.getLimiter("fresh"))
}

func TestRateLimiterStore_CleanupStopsOnCancel(t *testing.T) {
	store := newRateLimiterStore(1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.cleanupStale(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup goroutine did not stop")
	}
}
