package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	eventDomain "github.com/allisson/relay/internal/event/domain"
)

type eventUseCase struct {
	inboundRepo  InboundEventRepository
	outboundRepo OutboundEventRepository
	now          func() time.Time
}

func (e *eventUseCase) GetInbound(ctx context.Context, eventID uuid.UUID) (*eventDomain.InboundEvent, error) {
	return e.inboundRepo.Get(ctx, eventID)
}

func (e *eventUseCase) ListInbound(
	ctx context.Context,
	filter eventDomain.InboundFilter,
) ([]*eventDomain.InboundEvent, error) {
	return e.inboundRepo.List(ctx, filter)
}

func (e *eventUseCase) GetOutbound(ctx context.Context, eventID uuid.UUID) (*eventDomain.OutboundEvent, error) {
	return e.outboundRepo.Get(ctx, eventID)
}

func (e *eventUseCase) ListOutbound(
	ctx context.Context,
	filter eventDomain.OutboundFilter,
) ([]*eventDomain.OutboundEvent, error) {
	return e.outboundRepo.List(ctx, filter)
}

func (e *eventUseCase) RecordAttempt(
	ctx context.Context,
	eventID uuid.UUID,
	state eventDomain.State,
	deliveryErr string,
) error {
	if !state.IsTerminal() {
		return eventDomain.ErrInvalidStateTransition
	}

	var lastError *string
	if deliveryErr != "" {
		truncated := eventDomain.TruncateError(deliveryErr)
		lastError = &truncated
	}
	return e.outboundRepo.RecordAttempt(ctx, eventID, state, lastError, e.now())
}

// NewEventUseCase creates an EventUseCase.
func NewEventUseCase(inboundRepo InboundEventRepository, outboundRepo OutboundEventRepository) EventUseCase {
	return &eventUseCase{
		inboundRepo:  inboundRepo,
		outboundRepo: outboundRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}
