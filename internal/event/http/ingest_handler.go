// Package http provides HTTP handlers for event ingestion, event inspection
// and operator requeue actions.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/relay/internal/auth/http"
	apperrors "github.com/allisson/relay/internal/errors"
	"github.com/allisson/relay/internal/event/http/dto"
	eventUseCase "github.com/allisson/relay/internal/event/usecase"
	"github.com/allisson/relay/internal/httputil"
)

// SourceKeyHeader carries the source key on ingestion requests.
const SourceKeyHeader = "X-Source-Key"

// MaxPayloadBytes bounds the size of an ingested payload.
const MaxPayloadBytes = 1 << 20

// IngestHandler accepts events pushed by sources.
type IngestHandler struct {
	ingestUseCase eventUseCase.IngestUseCase
	logger        *slog.Logger
}

// NewIngestHandler creates a new ingestion handler.
func NewIngestHandler(ingestUseCase eventUseCase.IngestUseCase, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		ingestUseCase: ingestUseCase,
		logger:        logger,
	}
}

// AuthenticateSource is the ingestion authentication middleware. It checks the
// X-Source-Key header against the ":id" source and stores the source in the
// request context for the rate limiter and IngestHandler.
//
// Unknown sources, disabled sources and wrong keys all answer 401, so callers
// cannot tell which source ids exist.
func (h *IngestHandler) AuthenticateSource(c *gin.Context) {
	sourceID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		c.Abort()
		return
	}

	source, err := h.ingestUseCase.Authenticate(c.Request.Context(), sourceID, c.GetHeader(SourceKeyHeader))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		c.Abort()
		return
	}

	c.Request = c.Request.WithContext(authHTTP.WithSource(c.Request.Context(), source))
	c.Next()
}

// IngestHandler stores the request body as a QUEUED inbound event of the
// source authenticated by AuthenticateSource.
// POST /v1/sources/:id/events - Returns 202 Accepted.
//
// A body that is not a JSON object answers 422.
func (h *IngestHandler) IngestHandler(c *gin.Context) {
	source, ok := authHTTP.GetSource(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	payload, err := httputil.ReadLimitedBody(c, MaxPayloadBytes)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	event, err := h.ingestUseCase.Ingest(c.Request.Context(), source, payload)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapInboundEventToIngestResponse(event))
}
