package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	eventUseCase "github.com/allisson/relay/internal/event/usecase"
)

// RunRequeueFailed moves every FAILED outbound event of a pipeline back to QUEUED.
func RunRequeueFailed(
	ctx context.Context,
	requeueUseCase eventUseCase.RequeueUseCase,
	logger *slog.Logger,
	writer io.Writer,
	pipelineIDStr string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	pipelineID, err := parseID("pipeline id", pipelineIDStr)
	if err != nil {
		return err
	}

	count, err := requeueUseCase.RequeueFailedEvents(ctx, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to requeue failed events: %w", err)
	}

	logger.Info("failed events requeued",
		slog.String("pipeline_id", pipelineID.String()),
		slog.Int64("count", count),
	)

	return outputRequeued(count, format, writer)
}

// RunRequeueStranded moves inbound events held IN_PROGRESS for longer than
// olderThan back to QUEUED. Use it after a worker crashed when the sweeper is
// disabled.
func RunRequeueStranded(
	ctx context.Context,
	requeueUseCase eventUseCase.RequeueUseCase,
	logger *slog.Logger,
	writer io.Writer,
	olderThan time.Duration,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if olderThan <= 0 {
		return fmt.Errorf("older-than must be positive, got %s", olderThan)
	}

	count, err := requeueUseCase.RequeueStranded(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("failed to requeue stranded events: %w", err)
	}

	logger.Info("stranded events requeued",
		slog.Duration("older_than", olderThan),
		slog.Int64("count", count),
	)

	return outputRequeued(count, format, writer)
}

func outputRequeued(count int64, format string, writer io.Writer) error {
	if format == "json" {
		return outputJSON(map[string]int64{"requeued": count}, writer)
	}
	_, _ = fmt.Fprintf(writer, "Requeued %d events\n", count)
	return nil
}
