package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/relay/internal/errors"
)

func TestState_CanTransitionTo(t *testing.T) {
	allowed := map[State][]State{
		StateQueued:     {StateInProgress},
		StateInProgress: {StateCompleted, StateFailed},
	}

	for _, from := range States {
		for _, to := range States {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestState_IsTerminal(t *testing.T) {
	assert.False(t, StateQueued.IsTerminal())
	assert.False(t, StateInProgress.IsTerminal())
	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
}

func TestParseState(t *testing.T) {
	state, err := ParseState("FAILED")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, state)

	_, err = ParseState("failed")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestNewInboundEvent(t *testing.T) {
	sourceID := uuid.Must(uuid.NewV7())
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	event, err := NewInboundEvent(sourceID, []byte(` {"order": 42} `), now)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, event.State)
	assert.Equal(t, sourceID, event.SourceID)
	assert.Equal(t, now, event.CreatedAt)
	assert.False(t, event.ClaimToken.Valid)

	for _, payload := range []string{"", "[]", `"text"`, "42", `{"a":`, "null"} {
		_, err := NewInboundEvent(sourceID, []byte(payload), now)
		assert.ErrorIs(t, err, ErrInvalidPayload, payload)
	}
}

func TestNewOutboundEvent(t *testing.T) {
	inbound, err := NewInboundEvent(uuid.Must(uuid.NewV7()), []byte(`{"a":1}`), time.Now())
	require.NoError(t, err)
	pipelineID := uuid.Must(uuid.NewV7())

	outbound := NewOutboundEvent(inbound, pipelineID, inbound.CreatedAt)
	assert.Equal(t, inbound.ID, outbound.InboundEventID)
	assert.Equal(t, inbound.SourceID, outbound.SourceID)
	assert.Equal(t, pipelineID, outbound.PipelineID)
	assert.Equal(t, inbound.Payload, outbound.Payload)
	assert.Equal(t, StateQueued, outbound.State)
	assert.Zero(t, outbound.Attempts)
}

func TestTruncateError(t *testing.T) {
	assert.Equal(t, "boom", TruncateError("boom"))

	long := strings.Repeat("é", MaxLastErrorLength+10)
	truncated := TruncateError(long)
	assert.Equal(t, MaxLastErrorLength, len([]rune(truncated)))
}

func TestDispatchResult(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	ok := Completed(id, 3)
	assert.Equal(t, StateCompleted, ok.State)
	assert.Equal(t, 3, ok.OutboundCount)
	assert.NoError(t, ok.Err)

	cause := errors.New("insert failed")
	failed := Failed(id, 1, cause)
	assert.Equal(t, StateFailed, failed.State)
	assert.Equal(t, 1, failed.OutboundCount)
	assert.ErrorIs(t, failed.Err, cause)
}

func TestStateCounts_Total(t *testing.T) {
	counts := StateCounts{StateQueued: 2, StateCompleted: 5, StateFailed: 1}
	assert.Equal(t, int64(8), counts.Total())
	assert.Zero(t, StateCounts{}.Total())
}
