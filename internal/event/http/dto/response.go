package dto

import (
	"encoding/json"
	"time"

	eventDomain "github.com/allisson/relay/internal/event/domain"
)

// InboundEventResponse represents an inbound event in API responses.
type InboundEventResponse struct {
	ID        string          `json:"id"`
	SourceID  string          `json:"source_id"`
	Payload   json.RawMessage `json:"payload"`
	State     string          `json:"state"`
	ClaimedBy *string         `json:"claimed_by,omitempty"`
	ClaimedAt *time.Time      `json:"claimed_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MapInboundEventToResponse converts a domain inbound event to an API response.
func MapInboundEventToResponse(event *eventDomain.InboundEvent) InboundEventResponse {
	return InboundEventResponse{
		ID:        event.ID.String(),
		SourceID:  event.SourceID.String(),
		Payload:   event.Payload,
		State:     string(event.State),
		ClaimedBy: event.ClaimedBy,
		ClaimedAt: event.ClaimedAt,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}

// ListInboundEventsResponse represents a list of inbound events.
type ListInboundEventsResponse struct {
	Data []InboundEventResponse `json:"data"`
}

// MapInboundEventsToListResponse converts domain inbound events to a list response.
func MapInboundEventsToListResponse(events []*eventDomain.InboundEvent) ListInboundEventsResponse {
	responses := make([]InboundEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, MapInboundEventToResponse(event))
	}
	return ListInboundEventsResponse{Data: responses}
}

// IngestResponse acknowledges an accepted event.
type IngestResponse struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// MapInboundEventToIngestResponse builds the ingestion acknowledgement.
func MapInboundEventToIngestResponse(event *eventDomain.InboundEvent) IngestResponse {
	return IngestResponse{
		ID:        event.ID.String(),
		State:     string(event.State),
		CreatedAt: event.CreatedAt,
	}
}

// OutboundEventResponse represents an outbound event in API responses.
type OutboundEventResponse struct {
	ID             string          `json:"id"`
	InboundEventID string          `json:"inbound_event_id"`
	PipelineID     string          `json:"pipeline_id"`
	SourceID       string          `json:"source_id"`
	Payload        json.RawMessage `json:"payload"`
	State          string          `json:"state"`
	Attempts       int             `json:"attempts"`
	LastError      *string         `json:"last_error"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MapOutboundEventToResponse converts a domain outbound event to an API response.
func MapOutboundEventToResponse(event *eventDomain.OutboundEvent) OutboundEventResponse {
	return OutboundEventResponse{
		ID:             event.ID.String(),
		InboundEventID: event.InboundEventID.String(),
		PipelineID:     event.PipelineID.String(),
		SourceID:       event.SourceID.String(),
		Payload:        event.Payload,
		State:          string(event.State),
		Attempts:       event.Attempts,
		LastError:      event.LastError,
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}
}

// ListOutboundEventsResponse represents a list of outbound events.
type ListOutboundEventsResponse struct {
	Data []OutboundEventResponse `json:"data"`
}

// MapOutboundEventsToListResponse converts domain outbound events to a list response.
func MapOutboundEventsToListResponse(events []*eventDomain.OutboundEvent) ListOutboundEventsResponse {
	responses := make([]OutboundEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, MapOutboundEventToResponse(event))
	}
	return ListOutboundEventsResponse{Data: responses}
}

// RequeueResponse reports how many events were moved back to QUEUED.
type RequeueResponse struct {
	Requeued int64 `json:"requeued"`
}

// StatsResponse reports counts per state, with every state present.
type StatsResponse struct {
	Since    time.Time        `json:"since"`
	Inbound  map[string]int64 `json:"inbound"`
	Outbound map[string]int64 `json:"outbound"`
}

// MapStatsToResponse converts domain stats to an API response.
func MapStatsToResponse(stats *eventDomain.Stats) StatsResponse {
	return StatsResponse{
		Since:    stats.Since,
		Inbound:  mapCounts(stats.Inbound),
		Outbound: mapCounts(stats.Outbound),
	}
}

func mapCounts(counts eventDomain.StateCounts) map[string]int64 {
	out := make(map[string]int64, len(eventDomain.States))
	for _, state := range eventDomain.States {
		out[string(state)] = counts[state]
	}
	return out
}
