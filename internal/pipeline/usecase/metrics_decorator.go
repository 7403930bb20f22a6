package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/metrics"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
)

// pipelineUseCaseWithMetrics decorates PipelineUseCase with metrics instrumentation.
type pipelineUseCaseWithMetrics struct {
	next    PipelineUseCase
	metrics metrics.BusinessMetrics
}

// NewPipelineUseCaseWithMetrics wraps a PipelineUseCase with metrics recording.
func NewPipelineUseCaseWithMetrics(useCase PipelineUseCase, m metrics.BusinessMetrics) PipelineUseCase {
	return &pipelineUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *pipelineUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, p.metrics, "pipelines", operation, start, err)
}

func (p *pipelineUseCaseWithMetrics) Create(
	ctx context.Context,
	input *pipelineDomain.CreatePipelineInput,
) (*pipelineDomain.Pipeline, error) {
	start := time.Now()
	pipeline, err := p.next.Create(ctx, input)
	p.record(ctx, "pipeline_create", start, err)
	return pipeline, err
}

func (p *pipelineUseCaseWithMetrics) Update(
	ctx context.Context,
	pipelineID uuid.UUID,
	input *pipelineDomain.UpdatePipelineInput,
) (*pipelineDomain.Pipeline, error) {
	start := time.Now()
	pipeline, err := p.next.Update(ctx, pipelineID, input)
	p.record(ctx, "pipeline_update", start, err)
	return pipeline, err
}

func (p *pipelineUseCaseWithMetrics) Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error) {
	start := time.Now()
	pipeline, err := p.next.Get(ctx, pipelineID)
	p.record(ctx, "pipeline_get", start, err)
	return pipeline, err
}

func (p *pipelineUseCaseWithMetrics) List(
	ctx context.Context,
	filter pipelineDomain.ListFilter,
) ([]*pipelineDomain.Pipeline, error) {
	start := time.Now()
	pipelines, err := p.next.List(ctx, filter)
	p.record(ctx, "pipeline_list", start, err)
	return pipelines, err
}

func (p *pipelineUseCaseWithMetrics) Deactivate(ctx context.Context, pipelineID uuid.UUID) error {
	start := time.Now()
	err := p.next.Deactivate(ctx, pipelineID)
	p.record(ctx, "pipeline_deactivate", start, err)
	return err
}

func (p *pipelineUseCaseWithMetrics) ListActivePipelines(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, error) {
	start := time.Now()
	pipelines, err := p.next.ListActivePipelines(ctx, sourceID)
	p.record(ctx, "pipeline_list_active", start, err)
	return pipelines, err
}

func (p *pipelineUseCaseWithMetrics) Import(
	ctx context.Context,
	definitions []pipelineDomain.Definition,
) (*pipelineDomain.ImportResult, error) {
	start := time.Now()
	result, err := p.next.Import(ctx, definitions)
	p.record(ctx, "pipeline_import", start, err)
	return result, err
}
