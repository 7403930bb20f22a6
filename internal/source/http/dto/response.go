package dto

import (
	"time"

	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// SourceResponse represents a source in API responses. Keys are never included.
type SourceResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	IsActive          bool       `json:"is_active"`
	IsSecured         bool       `json:"is_secured"`
	HasKeys           bool       `json:"has_keys"`
	LastKeyRotationAt *time.Time `json:"last_key_rotation_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// MapSourceToResponse converts a domain source to an API response.
func MapSourceToResponse(source *sourceDomain.Source) SourceResponse {
	return SourceResponse{
		ID:                source.ID.String(),
		Name:              source.Name,
		IsActive:          source.IsActive,
		IsSecured:         source.IsSecured,
		HasKeys:           source.HasAnyKeysSetup(),
		LastKeyRotationAt: source.LastKeyRotationAt,
		CreatedAt:         source.CreatedAt,
		UpdatedAt:         source.UpdatedAt,
	}
}

// ListSourcesResponse represents a paginated list of sources.
type ListSourcesResponse struct {
	Data []SourceResponse `json:"data"`
}

// MapSourcesToListResponse converts domain sources to a list response.
func MapSourcesToListResponse(sources []*sourceDomain.Source) ListSourcesResponse {
	responses := make([]SourceResponse, 0, len(sources))
	for _, source := range sources {
		responses = append(responses, MapSourceToResponse(source))
	}
	return ListSourcesResponse{Data: responses}
}

// SourceKeysResponse carries the plaintext keys right after setup or rotation.
// This is the only response that ever contains them.
type SourceKeysResponse struct {
	ID                string     `json:"id"`
	PrimaryKey        *string    `json:"primary_key"`   //nolint:gosec // returned once after setup or rotation
	SecondaryKey      *string    `json:"secondary_key"` //nolint:gosec // returned once after setup or rotation
	LastKeyRotationAt *time.Time `json:"last_key_rotation_at"`
}

// MapSourceToKeysResponse converts a source with freshly issued keys to a response.
func MapSourceToKeysResponse(source *sourceDomain.Source) SourceKeysResponse {
	return SourceKeysResponse{
		ID:                source.ID.String(),
		PrimaryKey:        source.PrimaryKey,
		SecondaryKey:      source.SecondaryKey,
		LastKeyRotationAt: source.LastKeyRotationAt,
	}
}
