package domain

import (
	"github.com/allisson/relay/internal/errors"
)

// Event errors.
var (
	// ErrInboundEventNotFound indicates the inbound event does not exist.
	ErrInboundEventNotFound = errors.Wrap(errors.ErrNotFound, "inbound event not found")

	// ErrOutboundEventNotFound indicates the outbound event does not exist.
	ErrOutboundEventNotFound = errors.Wrap(errors.ErrNotFound, "outbound event not found")

	// ErrInvalidState indicates an unknown state name.
	ErrInvalidState = errors.Wrap(errors.ErrInvalidInput, "invalid event state")

	// ErrInvalidPayload indicates the payload is not a JSON object.
	ErrInvalidPayload = errors.Wrap(errors.ErrInvalidInput, "payload must be a JSON object")

	// ErrInvalidStateTransition indicates a transition the state machine does not allow.
	ErrInvalidStateTransition = errors.Wrap(errors.ErrConflict, "invalid state transition")

	// ErrClaimLost indicates the event is no longer IN_PROGRESS under the
	// caller's claim token, typically because a sweeper requeued it.
	ErrClaimLost = errors.Wrap(errors.ErrStrandedClaim, "claim no longer held")
)
