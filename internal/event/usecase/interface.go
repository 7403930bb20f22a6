// Package usecase implements event ingestion, fan-out dispatch, the claim
// scheduler and the operator requeue and stats operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	eventDomain "github.com/allisson/relay/internal/event/domain"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// InboundEventRepository persists inbound events and their claim lifecycle.
type InboundEventRepository interface {
	// Create stores a new QUEUED event.
	Create(ctx context.Context, event *eventDomain.InboundEvent) error

	// Get retrieves an event by ID. Returns ErrInboundEventNotFound if not found.
	Get(ctx context.Context, eventID uuid.UUID) (*eventDomain.InboundEvent, error)

	// List retrieves events ordered by ID descending.
	List(ctx context.Context, filter eventDomain.InboundFilter) ([]*eventDomain.InboundEvent, error)

	// ClaimQueued moves up to limit of the oldest QUEUED events to IN_PROGRESS
	// under claim and returns them oldest first. Concurrent callers receive
	// disjoint batches.
	ClaimQueued(ctx context.Context, limit int, claim eventDomain.Claim) ([]*eventDomain.InboundEvent, error)

	// Finalize writes a terminal state if the event is still IN_PROGRESS under
	// claimToken. Returns ErrClaimLost otherwise.
	Finalize(ctx context.Context, eventID, claimToken uuid.UUID, state eventDomain.State, at time.Time) error

	// RequeueStranded moves IN_PROGRESS events claimed before claimedBefore
	// back to QUEUED and returns how many moved.
	RequeueStranded(ctx context.Context, claimedBefore, now time.Time) (int64, error)

	// CountByState counts events created at or after since, per state.
	CountByState(ctx context.Context, since time.Time) (eventDomain.StateCounts, error)
}

// OutboundEventRepository persists the outbound queue.
type OutboundEventRepository interface {
	// Create stores a new outbound event.
	Create(ctx context.Context, event *eventDomain.OutboundEvent) error

	// Get retrieves an outbound event by ID. Returns ErrOutboundEventNotFound if not found.
	Get(ctx context.Context, eventID uuid.UUID) (*eventDomain.OutboundEvent, error)

	// List retrieves outbound events ordered by ID descending.
	List(ctx context.Context, filter eventDomain.OutboundFilter) ([]*eventDomain.OutboundEvent, error)

	// RecordAttempt stores a delivery outcome for a QUEUED or IN_PROGRESS event.
	RecordAttempt(
		ctx context.Context,
		eventID uuid.UUID,
		state eventDomain.State,
		lastError *string,
		at time.Time,
	) error

	// RequeueFailedByPipeline moves every FAILED event of one pipeline back to QUEUED.
	RequeueFailedByPipeline(ctx context.Context, pipelineID uuid.UUID, now time.Time) (int64, error)

	// CountByState counts events created at or after since, per state.
	CountByState(ctx context.Context, since time.Time) (eventDomain.StateCounts, error)
}

// PipelineRegistry resolves the pipelines an event fans out to.
type PipelineRegistry interface {
	// ListActivePipelines returns the pipelines of a source that are active now.
	ListActivePipelines(ctx context.Context, sourceID uuid.UUID) ([]*pipelineDomain.Pipeline, error)

	// Get retrieves a pipeline by ID. Returns ErrPipelineNotFound if not found.
	Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error)
}

// SourceAuthenticator checks a presented source key.
type SourceAuthenticator interface {
	Authenticate(ctx context.Context, sourceID uuid.UUID, presentedKey string) (*sourceDomain.Source, error)
}

// EventDispatcher fans one claimed event out to its active pipelines.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event *eventDomain.InboundEvent) eventDomain.DispatchResult
}

// EventProcessor dispatches one claimed event and persists its terminal state.
type EventProcessor interface {
	Process(ctx context.Context, event *eventDomain.InboundEvent) (eventDomain.DispatchResult, error)
}

// IngestUseCase accepts events from sources.
type IngestUseCase interface {
	// Authenticate resolves the source an event is pushed to. Unknown sources,
	// disabled sources and wrong keys return ErrAuthenticationFailed.
	Authenticate(ctx context.Context, sourceID uuid.UUID, presentedKey string) (*sourceDomain.Source, error)

	// Ingest stores payload as a QUEUED event of an authenticated source. A
	// payload that is not a JSON object returns ErrInvalidPayload.
	Ingest(ctx context.Context, source *sourceDomain.Source, payload []byte) (*eventDomain.InboundEvent, error)
}

// EventUseCase exposes read access to both queues and the delivery hook used
// by downstream workers.
type EventUseCase interface {
	GetInbound(ctx context.Context, eventID uuid.UUID) (*eventDomain.InboundEvent, error)
	ListInbound(ctx context.Context, filter eventDomain.InboundFilter) ([]*eventDomain.InboundEvent, error)
	GetOutbound(ctx context.Context, eventID uuid.UUID) (*eventDomain.OutboundEvent, error)
	ListOutbound(ctx context.Context, filter eventDomain.OutboundFilter) ([]*eventDomain.OutboundEvent, error)

	// RecordAttempt stores the outcome of one delivery attempt. State must be
	// COMPLETED or FAILED; deliveryErr is truncated to MaxLastErrorLength.
	RecordAttempt(ctx context.Context, eventID uuid.UUID, state eventDomain.State, deliveryErr string) error
}

// RequeueUseCase moves events back to QUEUED on operator request.
type RequeueUseCase interface {
	// RequeueFailedEvents requeues the FAILED outbound events of one pipeline.
	// Returns ErrPipelineNotFound for an unknown pipeline.
	RequeueFailedEvents(ctx context.Context, pipelineID uuid.UUID) (int64, error)

	// RequeueStranded requeues inbound events held IN_PROGRESS for longer than olderThan.
	RequeueStranded(ctx context.Context, olderThan time.Duration) (int64, error)
}

// StatsUseCase reports queue depth by state.
type StatsUseCase interface {
	// Counts returns inbound and outbound counts per state for events created since.
	Counts(ctx context.Context, since time.Time) (*eventDomain.Stats, error)
}
