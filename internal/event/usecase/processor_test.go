package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	eventDomain "github.com/allisson/relay/internal/event/domain"
	eventMocks "github.com/allisson/relay/internal/event/usecase/mocks"
	"github.com/allisson/relay/internal/metrics"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newClaimedEvent(t *testing.T) *eventDomain.InboundEvent {
	t.Helper()
	event := newQueuedEvent(t)
	claim := eventDomain.NewClaim("worker-0", fixedNow)
	event.State = eventDomain.StateInProgress
	event.ClaimToken = uuid.NullUUID{UUID: claim.Token, Valid: true}
	return event
}

func newTestProcessor(t *testing.T) (*Processor, *eventMocks.MockEventDispatcher, *eventMocks.MockInboundEventRepository) {
	dispatcher := &eventMocks.MockEventDispatcher{}
	inbound := &eventMocks.MockInboundEventRepository{}
	t.Cleanup(func() {
		dispatcher.AssertExpectations(t)
		inbound.AssertExpectations(t)
	})

	p := NewProcessor(dispatcher, inbound, metrics.NewNoOpEventMetrics(), discardLogger)
	p.now = func() time.Time { return fixedNow }
	return p, dispatcher, inbound
}

func TestProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PersistsCompleted", func(t *testing.T) {
		p, dispatcher, inbound := newTestProcessor(t)
		event := newClaimedEvent(t)

		dispatcher.On("Dispatch", ctx, event).Return(eventDomain.Completed(event.ID, 2)).Once()
		inbound.On("Finalize", ctx, event.ID, event.ClaimToken.UUID, eventDomain.StateCompleted, fixedNow).
			Return(nil).Once()

		result, err := p.Process(ctx, event)

		require.NoError(t, err)
		assert.Equal(t, 2, result.OutboundCount)
	})

	t.Run("Success_PersistsFailedAfterDispatchError", func(t *testing.T) {
		p, dispatcher, inbound := newTestProcessor(t)
		event := newClaimedEvent(t)
		dispatchErr := errors.New("write failed")

		dispatcher.On("Dispatch", ctx, event).Return(eventDomain.Failed(event.ID, 1, dispatchErr)).Once()
		inbound.On("Finalize", ctx, event.ID, event.ClaimToken.UUID, eventDomain.StateFailed, fixedNow).
			Return(nil).Once()

		result, err := p.Process(ctx, event)

		require.NoError(t, err)
		assert.Equal(t, eventDomain.StateFailed, result.State)
		assert.ErrorIs(t, result.Err, dispatchErr)
	})

	t.Run("Error_ClaimLost", func(t *testing.T) {
		p, dispatcher, inbound := newTestProcessor(t)
		event := newClaimedEvent(t)

		dispatcher.On("Dispatch", ctx, event).Return(eventDomain.Completed(event.ID, 0)).Once()
		inbound.On("Finalize", ctx, event.ID, event.ClaimToken.UUID, eventDomain.StateCompleted, mock.Anything).
			Return(eventDomain.ErrClaimLost).Once()

		result, err := p.Process(ctx, event)

		assert.ErrorIs(t, err, eventDomain.ErrClaimLost)
		assert.Equal(t, eventDomain.StateCompleted, result.State)
	})
}
