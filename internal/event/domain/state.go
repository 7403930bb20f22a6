// Package domain defines inbound and outbound events, their processing state
// machine and the result of dispatching an inbound event.
package domain

import (
	"github.com/allisson/relay/internal/errors"
)

// State is the processing state of an inbound or outbound event.
type State string

const (
	StateQueued     State = "QUEUED"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// States lists every state in lifecycle order.
var States = []State{StateQueued, StateInProgress, StateCompleted, StateFailed}

// ParseState validates a state name.
func ParseState(value string) (State, error) {
	for _, s := range States {
		if string(s) == value {
			return s, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidState, "%q", value)
}

// IsTerminal reports whether no automatic transition leaves the state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether the inbound state machine allows moving
// from s to next: QUEUED to IN_PROGRESS, then IN_PROGRESS to COMPLETED or FAILED.
// Requeue paths are explicit operator actions and are not part of it.
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StateQueued:
		return next == StateInProgress
	case StateInProgress:
		return next.IsTerminal()
	default:
		return false
	}
}
