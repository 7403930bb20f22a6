package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	eventDomain "github.com/allisson/relay/internal/event/domain"
	"github.com/allisson/relay/internal/event/http/dto"
	eventUseCase "github.com/allisson/relay/internal/event/usecase"
	"github.com/allisson/relay/internal/httputil"
	customValidation "github.com/allisson/relay/internal/validation"
)

// defaultStatsWindow is used when a stats request has no "since" parameter.
const defaultStatsWindow = 24 * time.Hour

// EventHandler serves the admin view of both queues, requeue actions and stats.
type EventHandler struct {
	eventUseCase   eventUseCase.EventUseCase
	requeueUseCase eventUseCase.RequeueUseCase
	statsUseCase   eventUseCase.StatsUseCase
	logger         *slog.Logger
	now            func() time.Time
}

// NewEventHandler creates a new event handler.
func NewEventHandler(
	eventUseCase eventUseCase.EventUseCase,
	requeueUseCase eventUseCase.RequeueUseCase,
	statsUseCase eventUseCase.StatsUseCase,
	logger *slog.Logger,
) *EventHandler {
	return &EventHandler{
		eventUseCase:   eventUseCase,
		requeueUseCase: requeueUseCase,
		statsUseCase:   statsUseCase,
		logger:         logger,
		now:            time.Now,
	}
}

// GetInboundHandler retrieves an inbound event.
// GET /v1/events/:id - Returns 200 OK.
func (h *EventHandler) GetInboundHandler(c *gin.Context) {
	eventID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	event, err := h.eventUseCase.GetInbound(c.Request.Context(), eventID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapInboundEventToResponse(event))
}

// ListInboundHandler lists inbound events, newest first.
// GET /v1/events?source_id=&state=&offset=0&limit=50 - Returns 200 OK.
func (h *EventHandler) ListInboundHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	sourceID, err := httputil.ParseOptionalUUIDQuery(c, "source_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	state, err := parseOptionalState(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.eventUseCase.ListInbound(c.Request.Context(), eventDomain.InboundFilter{
		SourceID: sourceID,
		State:    state,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapInboundEventsToListResponse(events))
}

// GetOutboundHandler retrieves an outbound event.
// GET /v1/outbound-events/:id - Returns 200 OK.
func (h *EventHandler) GetOutboundHandler(c *gin.Context) {
	eventID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	event, err := h.eventUseCase.GetOutbound(c.Request.Context(), eventID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOutboundEventToResponse(event))
}

// ListOutboundHandler lists outbound events.
// GET /v1/outbound-events?pipeline_id=&source_id=&inbound_event_id=&state=&offset=0&limit=50
func (h *EventHandler) ListOutboundHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := eventDomain.OutboundFilter{Offset: offset, Limit: limit}
	if filter.PipelineID, err = httputil.ParseOptionalUUIDQuery(c, "pipeline_id"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if filter.SourceID, err = httputil.ParseOptionalUUIDQuery(c, "source_id"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if filter.InboundEventID, err = httputil.ParseOptionalUUIDQuery(c, "inbound_event_id"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if filter.State, err = parseOptionalState(c); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.eventUseCase.ListOutbound(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOutboundEventsToListResponse(events))
}

// RecordAttemptHandler stores the outcome of a delivery attempt reported by a downstream worker.
// POST /v1/outbound-events/:id/attempts - Returns 204 No Content.
func (h *EventHandler) RecordAttemptHandler(c *gin.Context) {
	eventID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err = h.eventUseCase.RecordAttempt(c.Request.Context(), eventID, eventDomain.State(req.State), req.Error)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RequeueFailedHandler moves the FAILED outbound events of a pipeline back to QUEUED.
// POST /v1/pipelines/:id/requeue - Returns 200 OK with the affected count.
func (h *EventHandler) RequeueFailedHandler(c *gin.Context) {
	pipelineID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	count, err := h.requeueUseCase.RequeueFailedEvents(c.Request.Context(), pipelineID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RequeueResponse{Requeued: count})
}

// RequeueStrandedHandler moves inbound events stuck IN_PROGRESS back to QUEUED.
// POST /v1/events/requeue-stranded - Returns 200 OK with the affected count.
func (h *EventHandler) RequeueStrandedHandler(c *gin.Context) {
	var req dto.RequeueStrandedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	count, err := h.requeueUseCase.RequeueStranded(c.Request.Context(), req.Duration())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RequeueResponse{Requeued: count})
}

// StatsHandler reports counts per state for events created since a point in time.
// GET /v1/stats?since=2026-01-01T00:00:00Z - Defaults to the last 24 hours.
func (h *EventHandler) StatsHandler(c *gin.Context) {
	since, err := httputil.ParseSinceQuery(c, h.now().UTC(), defaultStatsWindow)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	stats, err := h.statsUseCase.Counts(c.Request.Context(), since)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatsToResponse(stats))
}

// parseOptionalState reads the "state" query parameter.
func parseOptionalState(c *gin.Context) (*eventDomain.State, error) {
	value := c.Query("state")
	if value == "" {
		return nil, nil
	}
	state, err := eventDomain.ParseState(value)
	if err != nil {
		return nil, err
	}
	return &state, nil
}
