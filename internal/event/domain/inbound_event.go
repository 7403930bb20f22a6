package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InboundEvent is one payload received for a source. The payload is never
// modified after creation; only the state and claim columns change.
type InboundEvent struct {
	ID         uuid.UUID       `json:"id"`
	SourceID   uuid.UUID       `json:"source_id"`
	Payload    json.RawMessage `json:"payload"`
	State      State           `json:"state"`
	ClaimToken uuid.NullUUID   `json:"-"`
	ClaimedBy  *string         `json:"claimed_by,omitempty"`
	ClaimedAt  *time.Time      `json:"claimed_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Claim identifies one claim batch. Every event claimed by a single claim
// operation carries the same token.
type Claim struct {
	Token     uuid.UUID
	WorkerID  string
	ClaimedAt time.Time
}

// NewClaim creates a claim with a fresh token.
func NewClaim(workerID string, now time.Time) Claim {
	return Claim{Token: uuid.Must(uuid.NewV7()), WorkerID: workerID, ClaimedAt: now}
}

// NewInboundEvent builds a QUEUED event after checking the payload is a JSON object.
func NewInboundEvent(sourceID uuid.UUID, payload []byte, now time.Time) (*InboundEvent, error) {
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}
	return &InboundEvent{
		ID:        uuid.Must(uuid.NewV7()),
		SourceID:  sourceID,
		Payload:   json.RawMessage(payload),
		State:     StateQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidatePayload accepts any well-formed JSON object. Its fields are opaque.
func ValidatePayload(payload []byte) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return ErrInvalidPayload
	}
	return nil
}

// InboundFilter narrows inbound event listings.
type InboundFilter struct {
	SourceID *uuid.UUID
	State    *State
	Offset   int
	Limit    int
}
