package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
	pipelineUseCase "github.com/allisson/relay/internal/pipeline/usecase"
)

// RunImportPipelines loads pipeline definitions from a YAML or JSON file and
// upserts them by (source_id, name). The whole file is applied in one
// transaction.
func RunImportPipelines(
	ctx context.Context,
	pipelineUseCase pipelineUseCase.PipelineUseCase,
	logger *slog.Logger,
	writer io.Writer,
	path string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	definitions, err := pipelineDomain.LoadDefinitionsFile(path)
	if err != nil {
		return err
	}

	logger.Info("importing pipelines",
		slog.String("path", path),
		slog.Int("definitions", len(definitions)),
	)

	result, err := pipelineUseCase.Import(ctx, definitions)
	if err != nil {
		return fmt.Errorf("failed to import pipelines: %w", err)
	}

	logger.Info("pipelines imported",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
	)

	if format == "json" {
		return outputJSON(result, writer)
	}

	_, _ = fmt.Fprintf(writer, "Pipelines imported: %d created, %d updated\n", result.Created, result.Updated)
	return nil
}
