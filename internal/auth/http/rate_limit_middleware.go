package http

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/relay/internal/errors"
	"github.com/allisson/relay/internal/httputil"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = time.Hour
)

// rateLimiterStore holds one token bucket per key.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
	now      func() time.Time
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// IngestRateLimitMiddleware enforces a token bucket per authenticated source on
// the ingestion endpoint. It must run after the source authentication
// middleware, so unauthenticated traffic never spends a source's budget.
//
// Idle buckets are dropped by a cleanup goroutine that stops when ctx is done.
//
// Returns:
//   - 401 Unauthorized if no authenticated source is in the context
//   - 429 Too Many Requests with a Retry-After header when the bucket is empty
//   - Continues otherwise
func IngestRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newRateLimiterStore(rps, burst)
	go store.cleanupStale(ctx, limiterCleanupInterval)

	return func(c *gin.Context) {
		source, ok := GetSource(c.Request.Context())
		if !ok {
			logger.Error("ingest rate limit middleware: no authenticated source in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		sourceID := source.ID.String()
		if !allow(c, store.getLimiter(sourceID), "Too many events for this source. Please retry after the specified delay.") {
			logger.Debug("ingest rate limit exceeded", slog.String("source_id", sourceID))
			return
		}

		c.Next()
	}
}

// IngestClientRateLimitMiddleware enforces a token bucket per (client IP, source)
// pair before the source key is checked, bounding how fast one client can guess
// keys. Requests whose ":id" is not a UUID pass through without allocating a
// bucket and are rejected by the authentication middleware.
//
// Returns:
//   - 429 Too Many Requests with a Retry-After header when the bucket is empty
//   - Continues otherwise
func IngestClientRateLimitMiddleware(
	ctx context.Context,
	rps float64,
	burst int,
	logger *slog.Logger,
) gin.HandlerFunc {
	store := newRateLimiterStore(rps, burst)
	go store.cleanupStale(ctx, limiterCleanupInterval)
	return ingestClientLimiter(store, logger)
}

func ingestClientLimiter(store *rateLimiterStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sourceID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		key := clientIP + "/" + sourceID.String()
		if !allow(c, store.getLimiter(key), "Too many requests from this IP. Please retry after the specified delay.") {
			logger.Debug("ingest client rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.String("source_id", sourceID.String()))
			return
		}

		c.Next()
	}
}

// allow takes a token from limiter. When none is left it writes the 429
// response, aborts the chain and returns false.
func allow(c *gin.Context, limiter *rate.Limiter, message string) bool {
	if limiter.Allow() {
		return true
	}

	reservation := limiter.Reserve()
	retryAfter := int(math.Ceil(reservation.Delay().Seconds()))
	reservation.Cancel()

	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limit_exceeded",
		"message": message,
	})
	c.Abort()
	return false
}

func newRateLimiterStore(rps float64, burst int) *rateLimiterStore {
	return &rateLimiterStore{
		rps:   rps,
		burst: burst,
		now:   time.Now,
	}
}

// getLimiter retrieves or creates the limiter for key.
func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = s.now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: s.now(),
	}
	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*rateLimiterEntry).limiter
}

// removeIdle drops limiters not accessed since threshold and returns how many were removed.
func (s *rateLimiterStore) removeIdle(threshold time.Time) int {
	removed := 0
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*rateLimiterEntry)
		entry.mu.Lock()
		idle := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if idle {
			s.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// cleanupStale periodically removes idle limiters until ctx is done.
func (s *rateLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.removeIdle(s.now().Add(-limiterIdleTimeout))
		}
	}
}
