package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/metrics"
)

type requeueUseCase struct {
	registry     PipelineRegistry
	inboundRepo  InboundEventRepository
	outboundRepo OutboundEventRepository
	metrics      metrics.EventMetrics
	logger       *slog.Logger
	now          func() time.Time
}

func (r *requeueUseCase) RequeueFailedEvents(ctx context.Context, pipelineID uuid.UUID) (int64, error) {
	if _, err := r.registry.Get(ctx, pipelineID); err != nil {
		return 0, err
	}

	count, err := r.outboundRepo.RequeueFailedByPipeline(ctx, pipelineID, r.now())
	if err != nil {
		return 0, err
	}

	r.metrics.RecordRequeued(ctx, "failed", count)
	r.logger.Info("requeued failed outbound events",
		slog.String("pipeline_id", pipelineID.String()),
		slog.Int64("count", count),
	)
	return count, nil
}

func (r *requeueUseCase) RequeueStranded(ctx context.Context, olderThan time.Duration) (int64, error) {
	now := r.now()
	count, err := r.inboundRepo.RequeueStranded(ctx, now.Add(-olderThan), now)
	if err != nil {
		return 0, err
	}

	r.metrics.RecordRequeued(ctx, "stranded", count)
	r.logger.Info("requeued stranded inbound events",
		slog.Duration("older_than", olderThan),
		slog.Int64("count", count),
	)
	return count, nil
}

// NewRequeueUseCase creates a RequeueUseCase.
func NewRequeueUseCase(
	registry PipelineRegistry,
	inboundRepo InboundEventRepository,
	outboundRepo OutboundEventRepository,
	eventMetrics metrics.EventMetrics,
	logger *slog.Logger,
) RequeueUseCase {
	return &requeueUseCase{
		registry:     registry,
		inboundRepo:  inboundRepo,
		outboundRepo: outboundRepo,
		metrics:      eventMetrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}
