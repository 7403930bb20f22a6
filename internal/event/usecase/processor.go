package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	eventDomain "github.com/allisson/relay/internal/event/domain"
	"github.com/allisson/relay/internal/metrics"
)

// Processor runs the dispatcher for a claimed event and writes the terminal
// state it returns.
type Processor struct {
	dispatcher  EventDispatcher
	inboundRepo InboundEventRepository
	metrics     metrics.EventMetrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewProcessor creates a Processor.
func NewProcessor(
	dispatcher EventDispatcher,
	inboundRepo InboundEventRepository,
	eventMetrics metrics.EventMetrics,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		dispatcher:  dispatcher,
		inboundRepo: inboundRepo,
		metrics:     eventMetrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Process always attempts to persist the terminal state, including after a
// failed dispatch. A dispatch failure is reported in the result, not the
// error; the error is only set when the terminal state could not be written.
func (p *Processor) Process(
	ctx context.Context,
	event *eventDomain.InboundEvent,
) (eventDomain.DispatchResult, error) {
	result := p.dispatcher.Dispatch(ctx, event)
	p.metrics.RecordDispatched(ctx, string(result.State), result.OutboundCount)

	if result.Err != nil {
		p.logger.Error("failed to dispatch event",
			slog.String("event_id", event.ID.String()),
			slog.String("source_id", event.SourceID.String()),
			slog.Int("outbound_count", result.OutboundCount),
			slog.Any("error", result.Err),
		)
	}

	err := p.inboundRepo.Finalize(ctx, event.ID, event.ClaimToken.UUID, result.State, p.now())
	if err != nil {
		if errors.Is(err, eventDomain.ErrClaimLost) {
			p.logger.Warn("claim lost before finalize",
				slog.String("event_id", event.ID.String()),
				slog.String("state", string(result.State)),
			)
		}
		return result, err
	}
	return result, nil
}
