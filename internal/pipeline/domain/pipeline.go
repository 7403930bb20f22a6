// Package domain defines the Pipeline entity and the declarative definitions
// used to import pipelines in bulk.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline is a named routing target bound to a source. Config is opaque to
// the relay core: destination, route and transform settings are carried as is
// for the downstream delivery worker.
type Pipeline struct {
	ID        uuid.UUID      `json:"id"`
	SourceID  uuid.UUID      `json:"source_id"`
	Name      string         `json:"name"`
	IsActive  bool           `json:"is_active"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreatePipelineInput holds the fields required to create a pipeline.
type CreatePipelineInput struct {
	SourceID uuid.UUID
	Name     string
	IsActive bool
	Config   map[string]any
}

// UpdatePipelineInput holds the mutable fields of a pipeline.
type UpdatePipelineInput struct {
	Name     string
	IsActive bool
	Config   map[string]any
}

// ListFilter narrows pipeline listings. A nil SourceID lists every source.
type ListFilter struct {
	SourceID *uuid.UUID
	Offset   int
	Limit    int
}
