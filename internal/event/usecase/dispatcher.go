package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/allisson/relay/internal/errors"
	eventDomain "github.com/allisson/relay/internal/event/domain"
)

// Dispatcher writes one outbound event per active pipeline of the event's
// source. It never changes the inbound event; the caller persists the state
// carried by the returned result.
type Dispatcher struct {
	registry     PipelineRegistry
	outboundRepo OutboundEventRepository
	tracer       trace.Tracer
	now          func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil tracer disables spans.
func NewDispatcher(registry PipelineRegistry, outboundRepo OutboundEventRepository, tracer trace.Tracer) *Dispatcher {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Dispatcher{
		registry:     registry,
		outboundRepo: outboundRepo,
		tracer:       tracer,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch fans the event out. Pipelines are read at call time, so one
// deactivated after the event arrived gets nothing. A source with no active
// pipelines completes with zero outbound events. The first write that fails
// stops the fan-out: the result is FAILED and the outbound events already
// written are kept.
func (d *Dispatcher) Dispatch(ctx context.Context, event *eventDomain.InboundEvent) eventDomain.DispatchResult {
	ctx, span := d.tracer.Start(ctx, "event.dispatch", trace.WithAttributes(
		attribute.String("event.id", event.ID.String()),
		attribute.String("source.id", event.SourceID.String()),
	))
	defer span.End()

	result := d.dispatch(ctx, event)

	span.SetAttributes(
		attribute.String("event.state", string(result.State)),
		attribute.Int("event.outbound_count", result.OutboundCount),
	)
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "dispatch failed")
	}
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, event *eventDomain.InboundEvent) eventDomain.DispatchResult {
	pipelines, err := d.registry.ListActivePipelines(ctx, event.SourceID)
	if err != nil {
		return eventDomain.Failed(event.ID, 0,
			fmt.Errorf("%w: list active pipelines: %w", apperrors.ErrDispatchFailed, err))
	}

	written := 0
	for _, pipeline := range pipelines {
		outbound := eventDomain.NewOutboundEvent(event, pipeline.ID, d.now())
		if err := d.outboundRepo.Create(ctx, outbound); err != nil {
			return eventDomain.Failed(event.ID, written,
				fmt.Errorf("%w: pipeline %s: %w", apperrors.ErrDispatchFailed, pipeline.ID, err))
		}
		written++
	}
	return eventDomain.Completed(event.ID, written)
}
