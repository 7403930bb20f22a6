package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	eventDomain "github.com/allisson/relay/internal/event/domain"
	"github.com/allisson/relay/internal/metrics"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

func recordEventOperation(
	ctx context.Context,
	m metrics.BusinessMetrics,
	operation string,
	start time.Time,
	err error,
) {
	metrics.Observe(ctx, m, "events", operation, start, err)
}

type ingestUseCaseWithMetrics struct {
	next    IngestUseCase
	metrics metrics.BusinessMetrics
}

// NewIngestUseCaseWithMetrics wraps an IngestUseCase with metrics recording.
func NewIngestUseCaseWithMetrics(useCase IngestUseCase, m metrics.BusinessMetrics) IngestUseCase {
	return &ingestUseCaseWithMetrics{next: useCase, metrics: m}
}

func (i *ingestUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	sourceID uuid.UUID,
	presentedKey string,
) (*sourceDomain.Source, error) {
	start := time.Now()
	source, err := i.next.Authenticate(ctx, sourceID, presentedKey)
	recordEventOperation(ctx, i.metrics, "event_authenticate", start, err)
	return source, err
}

func (i *ingestUseCaseWithMetrics) Ingest(
	ctx context.Context,
	source *sourceDomain.Source,
	payload []byte,
) (*eventDomain.InboundEvent, error) {
	start := time.Now()
	event, err := i.next.Ingest(ctx, source, payload)
	recordEventOperation(ctx, i.metrics, "event_ingest", start, err)
	return event, err
}

type eventUseCaseWithMetrics struct {
	next    EventUseCase
	metrics metrics.BusinessMetrics
}

// NewEventUseCaseWithMetrics wraps an EventUseCase with metrics recording.
func NewEventUseCaseWithMetrics(useCase EventUseCase, m metrics.BusinessMetrics) EventUseCase {
	return &eventUseCaseWithMetrics{next: useCase, metrics: m}
}

func (e *eventUseCaseWithMetrics) GetInbound(
	ctx context.Context,
	eventID uuid.UUID,
) (*eventDomain.InboundEvent, error) {
	start := time.Now()
	event, err := e.next.GetInbound(ctx, eventID)
	recordEventOperation(ctx, e.metrics, "inbound_get", start, err)
	return event, err
}

func (e *eventUseCaseWithMetrics) ListInbound(
	ctx context.Context,
	filter eventDomain.InboundFilter,
) ([]*eventDomain.InboundEvent, error) {
	start := time.Now()
	events, err := e.next.ListInbound(ctx, filter)
	recordEventOperation(ctx, e.metrics, "inbound_list", start, err)
	return events, err
}

func (e *eventUseCaseWithMetrics) GetOutbound(
	ctx context.Context,
	eventID uuid.UUID,
) (*eventDomain.OutboundEvent, error) {
	start := time.Now()
	event, err := e.next.GetOutbound(ctx, eventID)
	recordEventOperation(ctx, e.metrics, "outbound_get", start, err)
	return event, err
}

func (e *eventUseCaseWithMetrics) ListOutbound(
	ctx context.Context,
	filter eventDomain.OutboundFilter,
) ([]*eventDomain.OutboundEvent, error) {
	start := time.Now()
	events, err := e.next.ListOutbound(ctx, filter)
	recordEventOperation(ctx, e.metrics, "outbound_list", start, err)
	return events, err
}

func (e *eventUseCaseWithMetrics) RecordAttempt(
	ctx context.Context,
	eventID uuid.UUID,
	state eventDomain.State,
	deliveryErr string,
) error {
	start := time.Now()
	err := e.next.RecordAttempt(ctx, eventID, state, deliveryErr)
	recordEventOperation(ctx, e.metrics, "outbound_record_attempt", start, err)
	return err
}

type requeueUseCaseWithMetrics struct {
	next    RequeueUseCase
	metrics metrics.BusinessMetrics
}

// NewRequeueUseCaseWithMetrics wraps a RequeueUseCase with metrics recording.
func NewRequeueUseCaseWithMetrics(useCase RequeueUseCase, m metrics.BusinessMetrics) RequeueUseCase {
	return &requeueUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *requeueUseCaseWithMetrics) RequeueFailedEvents(ctx context.Context, pipelineID uuid.UUID) (int64, error) {
	start := time.Now()
	count, err := r.next.RequeueFailedEvents(ctx, pipelineID)
	recordEventOperation(ctx, r.metrics, "requeue_failed", start, err)
	return count, err
}

func (r *requeueUseCaseWithMetrics) RequeueStranded(ctx context.Context, olderThan time.Duration) (int64, error) {
	start := time.Now()
	count, err := r.next.RequeueStranded(ctx, olderThan)
	recordEventOperation(ctx, r.metrics, "requeue_stranded", start, err)
	return count, err
}
