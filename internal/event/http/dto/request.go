// Package dto provides data transfer objects for the event API.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	eventDomain "github.com/allisson/relay/internal/event/domain"
)

// RecordAttemptRequest reports the outcome of one delivery attempt of an outbound event.
type RecordAttemptRequest struct {
	State string `json:"state"`
	Error string `json:"error"`
}

// Validate checks that the state is terminal.
func (r *RecordAttemptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.State,
			validation.Required,
			validation.In(string(eventDomain.StateCompleted), string(eventDomain.StateFailed)),
		),
	)
}

// RequeueStrandedRequest selects IN_PROGRESS events claimed longer than OlderThan ago.
type RequeueStrandedRequest struct {
	OlderThan string `json:"older_than"`
}

// Validate checks that OlderThan is a positive Go duration such as "15m".
func (r *RequeueStrandedRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OlderThan,
			validation.Required,
			validation.By(positiveDuration),
		),
	)
}

// Duration returns the parsed OlderThan. Call Validate first.
func (r *RequeueStrandedRequest) Duration() time.Duration {
	d, _ := time.ParseDuration(r.OlderThan)
	return d
}

func positiveDuration(value any) error {
	s, _ := value.(string)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return validation.NewError("validation_duration", "must be a positive duration such as 15m")
	}
	return nil
}
