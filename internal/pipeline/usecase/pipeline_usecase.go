package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/database"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
)

type pipelineUseCase struct {
	txManager    database.TxManager
	pipelineRepo PipelineRepository
	sourceGetter SourceGetter
	cache        ActivePipelineCache
	logger       *slog.Logger
	now          func() time.Time
}

func (p *pipelineUseCase) Create(
	ctx context.Context,
	input *pipelineDomain.CreatePipelineInput,
) (*pipelineDomain.Pipeline, error) {
	if _, err := p.sourceGetter.Get(ctx, input.SourceID); err != nil {
		return nil, err
	}

	now := p.now()
	pipeline := &pipelineDomain.Pipeline{
		ID:        uuid.Must(uuid.NewV7()),
		SourceID:  input.SourceID,
		Name:      input.Name,
		IsActive:  input.IsActive,
		Config:    input.Config,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pipeline.Config == nil {
		pipeline.Config = map[string]any{}
	}

	if err := p.pipelineRepo.Create(ctx, pipeline); err != nil {
		return nil, err
	}
	p.invalidate(ctx, pipeline.SourceID)
	return pipeline, nil
}

func (p *pipelineUseCase) Update(
	ctx context.Context,
	pipelineID uuid.UUID,
	input *pipelineDomain.UpdatePipelineInput,
) (*pipelineDomain.Pipeline, error) {
	return p.mutate(ctx, pipelineID, func(pipeline *pipelineDomain.Pipeline) {
		pipeline.Name = input.Name
		pipeline.IsActive = input.IsActive
		if input.Config != nil {
			pipeline.Config = input.Config
		}
	})
}

func (p *pipelineUseCase) Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error) {
	return p.pipelineRepo.Get(ctx, pipelineID)
}

func (p *pipelineUseCase) List(
	ctx context.Context,
	filter pipelineDomain.ListFilter,
) ([]*pipelineDomain.Pipeline, error) {
	return p.pipelineRepo.List(ctx, filter)
}

func (p *pipelineUseCase) Deactivate(ctx context.Context, pipelineID uuid.UUID) error {
	_, err := p.mutate(ctx, pipelineID, func(pipeline *pipelineDomain.Pipeline) {
		pipeline.IsActive = false
	})
	return err
}

func (p *pipelineUseCase) mutate(
	ctx context.Context,
	pipelineID uuid.UUID,
	apply func(pipeline *pipelineDomain.Pipeline),
) (*pipelineDomain.Pipeline, error) {
	pipeline, err := p.pipelineRepo.Get(ctx, pipelineID)
	if err != nil {
		return nil, err
	}

	apply(pipeline)
	pipeline.UpdatedAt = p.now()

	if err := p.pipelineRepo.Update(ctx, pipeline); err != nil {
		return nil, err
	}
	p.invalidate(ctx, pipeline.SourceID)
	return pipeline, nil
}

func (p *pipelineUseCase) ListActivePipelines(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, error) {
	if p.cache != nil {
		pipelines, found, err := p.cache.Get(ctx, sourceID)
		if err != nil {
			p.logger.Warn("pipeline cache read failed",
				slog.String("source_id", sourceID.String()),
				slog.Any("error", err),
			)
		} else if found {
			return pipelines, nil
		}
	}

	pipelines, err := p.pipelineRepo.ListActive(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, sourceID, pipelines); err != nil {
			p.logger.Warn("pipeline cache write failed",
				slog.String("source_id", sourceID.String()),
				slog.Any("error", err),
			)
		}
	}
	return pipelines, nil
}

func (p *pipelineUseCase) Import(
	ctx context.Context,
	definitions []pipelineDomain.Definition,
) (*pipelineDomain.ImportResult, error) {
	result := &pipelineDomain.ImportResult{}
	touched := make(map[uuid.UUID]struct{})

	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, def := range definitions {
			if _, err := p.sourceGetter.Get(ctx, def.SourceID); err != nil {
				return err
			}

			now := p.now()
			existing, err := p.pipelineRepo.GetByName(ctx, def.SourceID, def.Name)
			switch {
			case errors.Is(err, pipelineDomain.ErrPipelineNotFound):
				pipeline := &pipelineDomain.Pipeline{
					ID:        uuid.Must(uuid.NewV7()),
					SourceID:  def.SourceID,
					Name:      def.Name,
					IsActive:  def.IsActive(),
					Config:    def.Config,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := p.pipelineRepo.Create(ctx, pipeline); err != nil {
					return err
				}
				result.Created++
			case err != nil:
				return err
			default:
				existing.IsActive = def.IsActive()
				existing.Config = def.Config
				existing.UpdatedAt = now
				if err := p.pipelineRepo.Update(ctx, existing); err != nil {
					return err
				}
				result.Updated++
			}
			touched[def.SourceID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for sourceID := range touched {
		p.invalidate(ctx, sourceID)
	}
	return result, nil
}

// invalidate drops the cached active set of a source after a committed write.
// A failure only delays visibility until the entry expires.
func (p *pipelineUseCase) invalidate(ctx context.Context, sourceID uuid.UUID) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx, sourceID); err != nil {
		p.logger.Warn("pipeline cache invalidation failed",
			slog.String("source_id", sourceID.String()),
			slog.Any("error", err),
		)
	}
}

// NewPipelineUseCase creates a PipelineUseCase. cache may be nil, in which case
// every ListActivePipelines call reads storage.
func NewPipelineUseCase(
	txManager database.TxManager,
	pipelineRepo PipelineRepository,
	sourceGetter SourceGetter,
	cache ActivePipelineCache,
	logger *slog.Logger,
) PipelineUseCase {
	return &pipelineUseCase{
		txManager:    txManager,
		pipelineRepo: pipelineRepo,
		sourceGetter: sourceGetter,
		cache:        cache,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}
