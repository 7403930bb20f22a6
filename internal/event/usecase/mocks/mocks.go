// Package mocks provides mock implementations of the event use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	eventDomain "github.com/allisson/relay/internal/event/domain"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// MockInboundEventRepository is a mock implementation of InboundEventRepository.
type MockInboundEventRepository struct {
	mock.Mock
}

func (m *MockInboundEventRepository) Create(ctx context.Context, event *eventDomain.InboundEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockInboundEventRepository) Get(ctx context.Context, eventID uuid.UUID) (*eventDomain.InboundEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventDomain.InboundEvent), args.Error(1)
}

func (m *MockInboundEventRepository) List(
	ctx context.Context,
	filter eventDomain.InboundFilter,
) ([]*eventDomain.InboundEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*eventDomain.InboundEvent), args.Error(1)
}

func (m *MockInboundEventRepository) ClaimQueued(
	ctx context.Context,
	limit int,
	claim eventDomain.Claim,
) ([]*eventDomain.InboundEvent, error) {
	args := m.Called(ctx, limit, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*eventDomain.InboundEvent), args.Error(1)
}

func (m *MockInboundEventRepository) Finalize(
	ctx context.Context,
	eventID, claimToken uuid.UUID,
	state eventDomain.State,
	at time.Time,
) error {
	args := m.Called(ctx, eventID, claimToken, state, at)
	return args.Error(0)
}

func (m *MockInboundEventRepository) RequeueStranded(
	ctx context.Context,
	claimedBefore, now time.Time,
) (int64, error) {
	args := m.Called(ctx, claimedBefore, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInboundEventRepository) CountByState(
	ctx context.Context,
	since time.Time,
) (eventDomain.StateCounts, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(eventDomain.StateCounts), args.Error(1)
}

// MockOutboundEventRepository is a mock implementation of OutboundEventRepository.
type MockOutboundEventRepository struct {
	mock.Mock
}

func (m *MockOutboundEventRepository) Create(ctx context.Context, event *eventDomain.OutboundEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboundEventRepository) Get(
	ctx context.Context,
	eventID uuid.UUID,
) (*eventDomain.OutboundEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventDomain.OutboundEvent), args.Error(1)
}

func (m *MockOutboundEventRepository) List(
	ctx context.Context,
	filter eventDomain.OutboundFilter,
) ([]*eventDomain.OutboundEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*eventDomain.OutboundEvent), args.Error(1)
}

func (m *MockOutboundEventRepository) RecordAttempt(
	ctx context.Context,
	eventID uuid.UUID,
	state eventDomain.State,
	lastError *string,
	at time.Time,
) error {
	args := m.Called(ctx, eventID, state, lastError, at)
	return args.Error(0)
}

func (m *MockOutboundEventRepository) RequeueFailedByPipeline(
	ctx context.Context,
	pipelineID uuid.UUID,
	now time.Time,
) (int64, error) {
	args := m.Called(ctx, pipelineID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboundEventRepository) CountByState(
	ctx context.Context,
	since time.Time,
) (eventDomain.StateCounts, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(eventDomain.StateCounts), args.Error(1)
}

// MockPipelineRegistry is a mock implementation of PipelineRegistry.
type MockPipelineRegistry struct {
	mock.Mock
}

func (m *MockPipelineRegistry) ListActivePipelines(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineRegistry) Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, pipelineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipelineDomain.Pipeline), args.Error(1)
}

// MockSourceAuthenticator is a mock implementation of SourceAuthenticator.
type MockSourceAuthenticator struct {
	mock.Mock
}

func (m *MockSourceAuthenticator) Authenticate(
	ctx context.Context,
	sourceID uuid.UUID,
	presentedKey string,
) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID, presentedKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

// MockEventDispatcher is a mock implementation of EventDispatcher.
type MockEventDispatcher struct {
	mock.Mock
}

func (m *MockEventDispatcher) Dispatch(
	ctx context.Context,
	event *eventDomain.InboundEvent,
) eventDomain.DispatchResult {
	args := m.Called(ctx, event)
	return args.Get(0).(eventDomain.DispatchResult)
}

// MockEventProcessor is a mock implementation of EventProcessor.
type MockEventProcessor struct {
	mock.Mock
}

func (m *MockEventProcessor) Process(
	ctx context.Context,
	event *eventDomain.InboundEvent,
) (eventDomain.DispatchResult, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(eventDomain.DispatchResult), args.Error(1)
}

// MockIngestUseCase is a mock implementation of IngestUseCase.
type MockIngestUseCase struct {
	mock.Mock
}

func (m *MockIngestUseCase) Authenticate(
	ctx context.Context,
	sourceID uuid.UUID,
	presentedKey string,
) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID, presentedKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

func (m *MockIngestUseCase) Ingest(
	ctx context.Context,
	source *sourceDomain.Source,
	payload []byte,
) (*eventDomain.InboundEvent, error) {
	args := m.Called(ctx, source, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventDomain.InboundEvent), args.Error(1)
}

// MockEventUseCase is a mock implementation of EventUseCase.
type MockEventUseCase struct {
	mock.Mock
}

func (m *MockEventUseCase) GetInbound(ctx context.Context, eventID uuid.UUID) (*eventDomain.InboundEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventDomain.InboundEvent), args.Error(1)
}

func (m *MockEventUseCase) ListInbound(
	ctx context.Context,
	filter eventDomain.InboundFilter,
) ([]*eventDomain.InboundEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*eventDomain.InboundEvent), args.Error(1)
}

func (m *MockEventUseCase) GetOutbound(ctx context.Context, eventID uuid.UUID) (*eventDomain.OutboundEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventDomain.OutboundEvent), args.Error(1)
}

func (m *MockEventUseCase) ListOutbound(
	ctx context.Context,
	filter eventDomain.OutboundFilter,
) ([]*eventDomain.OutboundEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*eventDomain.OutboundEvent), args.Error(1)
}

func (m *MockEventUseCase) RecordAttempt(
	ctx context.Context,
	eventID uuid.UUID,
	state eventDomain.State,
	deliveryErr string,
) error {
	args := m.Called(ctx, eventID, state, deliveryErr)
	return args.Error(0)
}

// MockRequeueUseCase is a mock implementation of RequeueUseCase.
type MockRequeueUseCase struct {
	mock.Mock
}

func (m *MockRequeueUseCase) RequeueFailedEvents(ctx context.Context, pipelineID uuid.UUID) (int64, error) {
	args := m.Called(ctx, pipelineID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequeueUseCase) RequeueStranded(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockStatsUseCase is a mock implementation of StatsUseCase.
type MockStatsUseCase struct {
	mock.Mock
}

func (m *MockStatsUseCase) Counts(ctx context.Context, since time.Time) (*eventDomain.Stats, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventDomain.Stats), args.Error(1)
}
