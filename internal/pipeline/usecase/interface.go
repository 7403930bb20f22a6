// Package usecase implements the Pipeline Registry.
package usecase

import (
	"context"

	"github.com/google/uuid"

	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// PipelineRepository defines persistence operations for pipelines.
type PipelineRepository interface {
	Create(ctx context.Context, pipeline *pipelineDomain.Pipeline) error
	Update(ctx context.Context, pipeline *pipelineDomain.Pipeline) error

	// Get retrieves a pipeline by ID. Returns ErrPipelineNotFound if not found.
	Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error)

	// GetByName retrieves a source's pipeline by name. Returns ErrPipelineNotFound if not found.
	GetByName(ctx context.Context, sourceID uuid.UUID, name string) (*pipelineDomain.Pipeline, error)

	List(ctx context.Context, filter pipelineDomain.ListFilter) ([]*pipelineDomain.Pipeline, error)

	// ListActive returns the pipelines of a source with is_active set, oldest first.
	ListActive(ctx context.Context, sourceID uuid.UUID) ([]*pipelineDomain.Pipeline, error)
}

// SourceGetter resolves the owning source of a pipeline.
type SourceGetter interface {
	Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error)
}

// ActivePipelineCache stores listActivePipelines results per source.
// A miss is reported with found=false and a nil error.
type ActivePipelineCache interface {
	Get(ctx context.Context, sourceID uuid.UUID) (pipelines []*pipelineDomain.Pipeline, found bool, err error)
	Set(ctx context.Context, sourceID uuid.UUID, pipelines []*pipelineDomain.Pipeline) error
	Invalidate(ctx context.Context, sourceID uuid.UUID) error
}

// PipelineUseCase manages pipelines and answers which pipelines are active
// for a source.
type PipelineUseCase interface {
	// Create adds a pipeline to an existing source.
	Create(ctx context.Context, input *pipelineDomain.CreatePipelineInput) (*pipelineDomain.Pipeline, error)

	Update(
		ctx context.Context,
		pipelineID uuid.UUID,
		input *pipelineDomain.UpdatePipelineInput,
	) (*pipelineDomain.Pipeline, error)

	Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error)

	List(ctx context.Context, filter pipelineDomain.ListFilter) ([]*pipelineDomain.Pipeline, error)

	// Deactivate clears the active flag. Events dispatched afterwards no longer
	// fan out to the pipeline; outbound events already created are kept.
	Deactivate(ctx context.Context, pipelineID uuid.UUID) error

	// ListActivePipelines returns only pipelines with active=true at call time,
	// subject to the registry cache TTL when a cache is configured.
	ListActivePipelines(ctx context.Context, sourceID uuid.UUID) ([]*pipelineDomain.Pipeline, error)

	// Import creates or updates pipelines from definitions, matching existing
	// pipelines by (source_id, name). All changes commit together.
	Import(ctx context.Context, definitions []pipelineDomain.Definition) (*pipelineDomain.ImportResult, error)
}
