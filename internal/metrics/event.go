package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EventMetrics records the throughput of the claim and dispatch loop.
type EventMetrics interface {
	// RecordClaimed counts inbound events claimed by one worker batch.
	RecordClaimed(ctx context.Context, workerID string, count int)

	// RecordDispatched counts a finished dispatch by terminal state and the
	// outbound events it produced.
	RecordDispatched(ctx context.Context, state string, outboundCount int)

	// RecordRequeued counts events moved back to QUEUED. Kind is "failed" for
	// operator requeues and "stranded" for the sweeper.
	RecordRequeued(ctx context.Context, kind string, count int64)
}

type eventMetrics struct {
	claimedCounter    metric.Int64Counter
	dispatchedCounter metric.Int64Counter
	outboundCounter   metric.Int64Counter
	requeuedCounter   metric.Int64Counter
}

// NewEventMetrics registers the event counters on the given meter provider.
func NewEventMetrics(meterProvider metric.MeterProvider, namespace string) (EventMetrics, error) {
	meter := meterProvider.Meter(namespace)

	claimed, err := meter.Int64Counter(
		fmt.Sprintf("%s_events_claimed_total", namespace),
		metric.WithDescription("Inbound events claimed for processing"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create claimed counter: %w", err)
	}

	dispatched, err := meter.Int64Counter(
		fmt.Sprintf("%s_events_dispatched_total", namespace),
		metric.WithDescription("Inbound events dispatched, by terminal state"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatched counter: %w", err)
	}

	outbound, err := meter.Int64Counter(
		fmt.Sprintf("%s_outbound_events_created_total", namespace),
		metric.WithDescription("Outbound events written by fan-out"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbound counter: %w", err)
	}

	requeued, err := meter.Int64Counter(
		fmt.Sprintf("%s_events_requeued_total", namespace),
		metric.WithDescription("Events moved back to QUEUED"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create requeued counter: %w", err)
	}

	return &eventMetrics{
		claimedCounter:    claimed,
		dispatchedCounter: dispatched,
		outboundCounter:   outbound,
		requeuedCounter:   requeued,
	}, nil
}

func (e *eventMetrics) RecordClaimed(ctx context.Context, workerID string, count int) {
	e.claimedCounter.Add(ctx, int64(count), metric.WithAttributes(attribute.String("worker_id", workerID)))
}

func (e *eventMetrics) RecordDispatched(ctx context.Context, state string, outboundCount int) {
	attrs := metric.WithAttributes(attribute.String("state", state))
	e.dispatchedCounter.Add(ctx, 1, attrs)
	if outboundCount > 0 {
		e.outboundCounter.Add(ctx, int64(outboundCount), attrs)
	}
}

func (e *eventMetrics) RecordRequeued(ctx context.Context, kind string, count int64) {
	e.requeuedCounter.Add(ctx, count, metric.WithAttributes(attribute.String("kind", kind)))
}

// NoOpEventMetrics discards event metrics.
type NoOpEventMetrics struct{}

// NewNoOpEventMetrics creates a no-op EventMetrics implementation.
func NewNoOpEventMetrics() EventMetrics {
	return &NoOpEventMetrics{}
}

func (n *NoOpEventMetrics) RecordClaimed(ctx context.Context, workerID string, count int) {}

func (n *NoOpEventMetrics) RecordDispatched(ctx context.Context, state string, outboundCount int) {}

func (n *NoOpEventMetrics) RecordRequeued(ctx context.Context, kind string, count int64) {}
