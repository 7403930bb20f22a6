package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxLastErrorLength bounds the stored delivery error message.
const MaxLastErrorLength = 3999

// OutboundEvent is the work item produced for one (inbound event, pipeline)
// pair. Delivery and its state changes belong to a downstream worker.
type OutboundEvent struct {
	ID             uuid.UUID       `json:"id"`
	InboundEventID uuid.UUID       `json:"inbound_event_id"`
	PipelineID     uuid.UUID       `json:"pipeline_id"`
	SourceID       uuid.UUID       `json:"source_id"`
	Payload        json.RawMessage `json:"payload"`
	State          State           `json:"state"`
	Attempts       int             `json:"attempts"`
	LastError      *string         `json:"last_error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewOutboundEvent builds a QUEUED outbound event carrying the inbound payload.
func NewOutboundEvent(inbound *InboundEvent, pipelineID uuid.UUID, now time.Time) *OutboundEvent {
	return &OutboundEvent{
		ID:             uuid.Must(uuid.NewV7()),
		InboundEventID: inbound.ID,
		PipelineID:     pipelineID,
		SourceID:       inbound.SourceID,
		Payload:        inbound.Payload,
		State:          StateQueued,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TruncateError clips a delivery error message to MaxLastErrorLength runes.
func TruncateError(message string) string {
	runes := []rune(message)
	if len(runes) <= MaxLastErrorLength {
		return message
	}
	return string(runes[:MaxLastErrorLength])
}

// OutboundFilter narrows outbound event listings.
type OutboundFilter struct {
	PipelineID     *uuid.UUID
	SourceID       *uuid.UUID
	InboundEventID *uuid.UUID
	State          *State
	Offset         int
	Limit          int
}
