package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	sourceDomain "github.com/allisson/relay/internal/source/domain"
	"github.com/allisson/relay/internal/source/http/dto"
	sourceUseCase "github.com/allisson/relay/internal/source/usecase"
)

// RunCreateSource registers a new source. A secured source gets its keys
// generated immediately and printed once.
func RunCreateSource(
	ctx context.Context,
	sourceUseCase sourceUseCase.SourceUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	isActive bool,
	isSecured bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("creating new source", slog.String("name", name))

	source, err := sourceUseCase.Create(ctx, &sourceDomain.CreateSourceInput{
		Name:      name,
		IsActive:  isActive,
		IsSecured: isSecured,
	})
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	if isSecured {
		keyed, err := sourceUseCase.SetupKeys(ctx, source.ID)
		if err != nil {
			return fmt.Errorf("failed to set up keys for source %s: %w", source.ID, err)
		}
		source = keyed
	}

	logger.Info("source created successfully",
		slog.String("source_id", source.ID.String()),
		slog.Bool("is_secured", isSecured),
	)

	if format == "json" {
		return outputJSON(map[string]any{
			"source": dto.MapSourceToResponse(source),
			"keys":   dto.MapSourceToKeysResponse(source),
		}, writer)
	}

	_, _ = fmt.Fprintln(writer, "\nSource created successfully!")
	_, _ = fmt.Fprintf(writer, "Source ID: %s\n", source.ID.String())
	outputKeysText(source, writer)
	return nil
}

// RunSetupSourceKeys generates a fresh primary and secondary key for a source,
// replacing any existing keys.
func RunSetupSourceKeys(
	ctx context.Context,
	sourceUseCase sourceUseCase.SourceUseCase,
	logger *slog.Logger,
	writer io.Writer,
	sourceIDStr string,
	format string,
) error {
	return runKeyOperation(ctx, logger, writer, sourceIDStr, format, "set up", sourceUseCase.SetupKeys)
}

// RunRotateSourceKeys demotes the primary key to secondary and generates a new
// primary. Callers still presenting the old primary keep working until the
// next rotation.
func RunRotateSourceKeys(
	ctx context.Context,
	sourceUseCase sourceUseCase.SourceUseCase,
	logger *slog.Logger,
	writer io.Writer,
	sourceIDStr string,
	format string,
) error {
	return runKeyOperation(ctx, logger, writer, sourceIDStr, format, "rotate", sourceUseCase.RotateKeys)
}

func runKeyOperation(
	ctx context.Context,
	logger *slog.Logger,
	writer io.Writer,
	sourceIDStr string,
	format string,
	action string,
	operation func(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error),
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	sourceID, err := parseID("source id", sourceIDStr)
	if err != nil {
		return err
	}

	source, err := operation(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to %s keys: %w", action, err)
	}

	logger.Info("source keys updated",
		slog.String("source_id", sourceID.String()),
		slog.String("action", action),
	)

	if format == "json" {
		return outputJSON(dto.MapSourceToKeysResponse(source), writer)
	}

	_, _ = fmt.Fprintf(writer, "\nKeys updated for source %s\n", sourceID.String())
	outputKeysText(source, writer)
	return nil
}

func outputKeysText(source *sourceDomain.Source, writer io.Writer) {
	if source.PrimaryKey == nil {
		return
	}
	_, _ = fmt.Fprintf(writer, "Primary key: %s\n", *source.PrimaryKey)
	if source.SecondaryKey != nil {
		_, _ = fmt.Fprintf(writer, "Secondary key: %s\n", *source.SecondaryKey)
	}
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: Keys are shown only here. Distribute them through a secure channel.")
}
