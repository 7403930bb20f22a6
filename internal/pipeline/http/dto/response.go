package dto

import (
	"time"

	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
)

// PipelineResponse represents a pipeline in API responses.
type PipelineResponse struct {
	ID        string         `json:"id"`
	SourceID  string         `json:"source_id"`
	Name      string         `json:"name"`
	IsActive  bool           `json:"is_active"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// MapPipelineToResponse converts a domain pipeline to an API response.
func MapPipelineToResponse(pipeline *pipelineDomain.Pipeline) PipelineResponse {
	return PipelineResponse{
		ID:        pipeline.ID.String(),
		SourceID:  pipeline.SourceID.String(),
		Name:      pipeline.Name,
		IsActive:  pipeline.IsActive,
		Config:    pipeline.Config,
		CreatedAt: pipeline.CreatedAt,
		UpdatedAt: pipeline.UpdatedAt,
	}
}

// ListPipelinesResponse represents a list of pipelines.
type ListPipelinesResponse struct {
	Data []PipelineResponse `json:"data"`
}

// MapPipelinesToListResponse converts domain pipelines to a list response.
func MapPipelinesToListResponse(pipelines []*pipelineDomain.Pipeline) ListPipelinesResponse {
	responses := make([]PipelineResponse, 0, len(pipelines))
	for _, pipeline := range pipelines {
		responses = append(responses, MapPipelineToResponse(pipeline))
	}
	return ListPipelinesResponse{Data: responses}
}
