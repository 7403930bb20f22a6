package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/allisson/relay/internal/errors"
	eventDomain "github.com/allisson/relay/internal/event/domain"
	eventMocks "github.com/allisson/relay/internal/event/usecase/mocks"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
)

var fixedNow = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func newQueuedEvent(t *testing.T) *eventDomain.InboundEvent {
	t.Helper()
	event, err := eventDomain.NewInboundEvent(uuid.Must(uuid.NewV7()), []byte(`{"action":"opened"}`), fixedNow)
	require.NoError(t, err)
	return event
}

func newPipelines(sourceID uuid.UUID, n int) []*pipelineDomain.Pipeline {
	pipelines := make([]*pipelineDomain.Pipeline, n)
	for i := range pipelines {
		pipelines[i] = &pipelineDomain.Pipeline{ID: uuid.Must(uuid.NewV7()), SourceID: sourceID, IsActive: true}
	}
	return pipelines
}

func newTestDispatcher(
	t *testing.T,
) (*Dispatcher, *eventMocks.MockPipelineRegistry, *eventMocks.MockOutboundEventRepository, *tracetest.SpanRecorder) {
	registry := &eventMocks.MockPipelineRegistry{}
	outbound := &eventMocks.MockOutboundEventRepository{}
	t.Cleanup(func() {
		registry.AssertExpectations(t)
		outbound.AssertExpectations(t)
	})

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	d := NewDispatcher(registry, outbound, provider.Tracer("test"))
	d.now = func() time.Time { return fixedNow }
	return d, registry, outbound, recorder
}

func spanAttribute(span sdktrace.ReadOnlySpan, key string) attribute.Value {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NoActivePipelinesCompletes", func(t *testing.T) {
		d, registry, _, recorder := newTestDispatcher(t)
		event := newQueuedEvent(t)

		registry.On("ListActivePipelines", mock.Anything, event.SourceID).
			Return([]*pipelineDomain.Pipeline{}, nil).Once()

		result := d.Dispatch(ctx, event)

		assert.Equal(t, eventDomain.Completed(event.ID, 0), result)
		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "event.dispatch", spans[0].Name())
		assert.Equal(t, "COMPLETED", spanAttribute(spans[0], "event.state").AsString())
	})

	t.Run("Success_OneOutboundPerActivePipeline", func(t *testing.T) {
		d, registry, outbound, _ := newTestDispatcher(t)
		event := newQueuedEvent(t)
		pipelines := newPipelines(event.SourceID, 3)

		registry.On("ListActivePipelines", mock.Anything, event.SourceID).Return(pipelines, nil).Once()

		var created []*eventDomain.OutboundEvent
		outbound.On("Create", mock.Anything, mock.AnythingOfType("*domain.OutboundEvent")).
			Run(func(args mock.Arguments) {
				created = append(created, args.Get(1).(*eventDomain.OutboundEvent))
			}).
			Return(nil).Times(3)

		result := d.Dispatch(ctx, event)

		assert.Equal(t, eventDomain.StateCompleted, result.State)
		assert.Equal(t, 3, result.OutboundCount)
		assert.NoError(t, result.Err)
		require.Len(t, created, 3)
		for i, o := range created {
			assert.Equal(t, pipelines[i].ID, o.PipelineID)
			assert.Equal(t, event.ID, o.InboundEventID)
			assert.Equal(t, event.SourceID, o.SourceID)
			assert.Equal(t, eventDomain.StateQueued, o.State)
			assert.JSONEq(t, string(event.Payload), string(o.Payload))
		}
		assert.Equal(t, eventDomain.StateQueued, event.State, "dispatch never mutates the inbound event")
	})

	t.Run("Error_PartialFanOutStopsAtFirstFailure", func(t *testing.T) {
		d, registry, outbound, recorder := newTestDispatcher(t)
		event := newQueuedEvent(t)
		pipelines := newPipelines(event.SourceID, 3)
		writeErr := errors.New("disk full")

		registry.On("ListActivePipelines", mock.Anything, event.SourceID).Return(pipelines, nil).Once()
		outbound.On("Create", mock.Anything, mock.MatchedBy(func(o *eventDomain.OutboundEvent) bool {
			return o.PipelineID == pipelines[0].ID
		})).Return(nil).Once()
		outbound.On("Create", mock.Anything, mock.MatchedBy(func(o *eventDomain.OutboundEvent) bool {
			return o.PipelineID == pipelines[1].ID
		})).Return(writeErr).Once()

		result := d.Dispatch(ctx, event)

		assert.Equal(t, eventDomain.StateFailed, result.State)
		assert.Equal(t, 1, result.OutboundCount)
		assert.ErrorIs(t, result.Err, apperrors.ErrDispatchFailed)
		assert.ErrorIs(t, result.Err, writeErr)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, int64(1), spanAttribute(spans[0], "event.outbound_count").AsInt64())
	})

	t.Run("Error_RegistryFailure", func(t *testing.T) {
		d, registry, _, _ := newTestDispatcher(t)
		event := newQueuedEvent(t)
		registryErr := errors.New("connection reset")

		registry.On("ListActivePipelines", mock.Anything, event.SourceID).Return(nil, registryErr).Once()

		result := d.Dispatch(ctx, event)

		assert.Equal(t, eventDomain.StateFailed, result.State)
		assert.Zero(t, result.OutboundCount)
		assert.ErrorIs(t, result.Err, apperrors.ErrDispatchFailed)
		assert.ErrorIs(t, result.Err, registryErr)
	})

	t.Run("Success_NilTracer", func(t *testing.T) {
		registry := &eventMocks.MockPipelineRegistry{}
		registry.On("ListActivePipelines", mock.Anything, mock.Anything).Return(nil, nil).Once()

		d := NewDispatcher(registry, &eventMocks.MockOutboundEventRepository{}, nil)
		result := d.Dispatch(ctx, newQueuedEvent(t))

		assert.Equal(t, eventDomain.StateCompleted, result.State)
		registry.AssertExpectations(t)
	})
}
