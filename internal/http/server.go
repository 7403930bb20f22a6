// Package http provides the HTTP servers: the API server for ingestion and
// administration, and the separate metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/relay/internal/auth/http"
	authService "github.com/allisson/relay/internal/auth/service"
	"github.com/allisson/relay/internal/config"
	eventHTTP "github.com/allisson/relay/internal/event/http"
	"github.com/allisson/relay/internal/metrics"
	pipelineHTTP "github.com/allisson/relay/internal/pipeline/http"
	sourceHTTP "github.com/allisson/relay/internal/source/http"
)

const readinessTimeout = 2 * time.Second

// Handlers groups the module handlers mounted by SetupRouter.
type Handlers struct {
	Source   *sourceHTTP.SourceHandler
	Pipeline *pipelineHTTP.PipelineHandler
	Ingest   *eventHTTP.IngestHandler
	Event    *eventHTTP.EventHandler
}

// Server is the API server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger

	// ctx bounds background work started by middleware; cancelled on Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new API server. Call SetupRouter before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetupRouter builds the gin engine with every route.
//
// Public routes: /health, /ready and POST /v1/sources/:id/events (source key
// auth, optional per-client and per-source rate limits). Everything else under /v1 requires
// the admin bearer token.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	tokenService authService.AdminTokenService,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Per-client buckets run before the key check, per-source buckets after it.
	ingestChain := []gin.HandlerFunc{}
	if cfg.IngestRateLimitEnabled {
		ingestChain = append(ingestChain, authHTTP.IngestClientRateLimitMiddleware(
			s.ctx,
			cfg.IngestRateLimitRequestsPerSec,
			cfg.IngestRateLimitBurst,
			s.logger,
		))
	}
	ingestChain = append(ingestChain, handlers.Ingest.AuthenticateSource)
	if cfg.IngestRateLimitEnabled {
		ingestChain = append(ingestChain, authHTTP.IngestRateLimitMiddleware(
			s.ctx,
			cfg.IngestRateLimitRequestsPerSec,
			cfg.IngestRateLimitBurst,
			s.logger,
		))
	}
	ingestChain = append(ingestChain, handlers.Ingest.IngestHandler)
	v1.POST("/sources/:id/events", ingestChain...)

	admin := v1.Group("")
	admin.Use(authHTTP.AdminAuthMiddleware(cfg.AdminTokenHash, tokenService, s.logger))
	{
		admin.POST("/sources", handlers.Source.CreateHandler)
		admin.GET("/sources", handlers.Source.ListHandler)
		admin.GET("/sources/:id", handlers.Source.GetHandler)
		admin.PUT("/sources/:id", handlers.Source.UpdateHandler)
		admin.DELETE("/sources/:id", handlers.Source.DisableHandler)
		admin.POST("/sources/:id/keys/setup", handlers.Source.SetupKeysHandler)
		admin.POST("/sources/:id/keys/rotate", handlers.Source.RotateKeysHandler)
		admin.GET("/sources/:id/pipelines/active", handlers.Pipeline.ListActiveHandler)

		admin.POST("/pipelines", handlers.Pipeline.CreateHandler)
		admin.GET("/pipelines", handlers.Pipeline.ListHandler)
		admin.POST("/pipelines/import", handlers.Pipeline.ImportHandler)
		admin.GET("/pipelines/:id", handlers.Pipeline.GetHandler)
		admin.PUT("/pipelines/:id", handlers.Pipeline.UpdateHandler)
		admin.POST("/pipelines/:id/deactivate", handlers.Pipeline.DeactivateHandler)
		admin.POST("/pipelines/:id/requeue", handlers.Event.RequeueFailedHandler)

		admin.GET("/events", handlers.Event.ListInboundHandler)
		admin.POST("/events/requeue-stranded", handlers.Event.RequeueStrandedHandler)
		admin.GET("/events/:id", handlers.Event.GetInboundHandler)
		admin.GET("/outbound-events", handlers.Event.ListOutboundHandler)
		admin.GET("/outbound-events/:id", handlers.Event.GetOutboundHandler)
		admin.POST("/outbound-events/:id/attempts", handlers.Event.RecordAttemptHandler)
		admin.GET("/stats", handlers.Event.StatsHandler)
	}

	s.router = router
}

// GetHandler returns the configured router.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured, call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server and stops middleware background work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	respondHealthy(c)
}

func (s *Server) readinessHandler(c *gin.Context) {
	respondReadiness(c, s.db, s.logger)
}

func respondHealthy(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// respondReadiness reports ready only when the database answers a ping.
func respondReadiness(c *gin.Context, db *sql.DB, logger *slog.Logger) {
	database := "ok"
	if db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	if database != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": database},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": database},
	})
}
