package domain

import (
	"time"

	"github.com/google/uuid"
)

// DispatchResult is the outcome of fanning out one inbound event. State is
// always terminal. OutboundCount counts the outbound events written, which on
// failure may be fewer than the active pipelines.
type DispatchResult struct {
	EventID       uuid.UUID
	State         State
	OutboundCount int
	Err           error
}

// Completed returns a successful result.
func Completed(eventID uuid.UUID, outboundCount int) DispatchResult {
	return DispatchResult{EventID: eventID, State: StateCompleted, OutboundCount: outboundCount}
}

// Failed returns a failed result carrying the cause.
func Failed(eventID uuid.UUID, outboundCount int, err error) DispatchResult {
	return DispatchResult{EventID: eventID, State: StateFailed, OutboundCount: outboundCount, Err: err}
}

// StateCounts maps each state to a number of events.
type StateCounts map[State]int64

// Total sums every state.
func (c StateCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// Stats reports inbound and outbound counts by state for events created since
// a point in time.
type Stats struct {
	Since    time.Time   `json:"since"`
	Inbound  StateCounts `json:"inbound"`
	Outbound StateCounts `json:"outbound"`
}
