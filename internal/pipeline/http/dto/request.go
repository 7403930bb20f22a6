// Package dto provides data transfer objects for the pipeline management API.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
	customValidation "github.com/allisson/relay/internal/validation"
)

// CreatePipelineRequest contains the parameters for adding a pipeline to a source.
type CreatePipelineRequest struct {
	SourceID string         `json:"source_id"`
	Name     string         `json:"name"`
	IsActive bool           `json:"is_active"`
	Config   map[string]any `json:"config"`
}

// Validate checks if the create pipeline request is valid.
func (r *CreatePipelineRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SourceID,
			validation.Required,
			customValidation.UUID,
		),
		validation.Field(&r.Name,
			validation.Required,
			customValidation.Identifier,
			validation.Length(1, 255),
		),
	)
}

// ToInput converts a validated request to the use case input.
func (r *CreatePipelineRequest) ToInput() *pipelineDomain.CreatePipelineInput {
	return &pipelineDomain.CreatePipelineInput{
		SourceID: uuid.MustParse(r.SourceID),
		Name:     r.Name,
		IsActive: r.IsActive,
		Config:   configOrEmpty(r.Config),
	}
}

// UpdatePipelineRequest contains the mutable fields of a pipeline.
type UpdatePipelineRequest struct {
	Name     string         `json:"name"`
	IsActive bool           `json:"is_active"`
	Config   map[string]any `json:"config"`
}

// Validate checks if the update pipeline request is valid.
func (r *UpdatePipelineRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.Identifier,
			validation.Length(1, 255),
		),
	)
}

// ToInput converts the request to the use case input.
func (r *UpdatePipelineRequest) ToInput() *pipelineDomain.UpdatePipelineInput {
	return &pipelineDomain.UpdatePipelineInput{
		Name:     r.Name,
		IsActive: r.IsActive,
		Config:   configOrEmpty(r.Config),
	}
}

func configOrEmpty(config map[string]any) map[string]any {
	if config == nil {
		return map[string]any{}
	}
	return config
}
