package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	eventDomain "github.com/allisson/relay/internal/event/domain"
	"github.com/allisson/relay/internal/event/http/dto"
	eventUseCase "github.com/allisson/relay/internal/event/usecase"
)

// RunEventStats prints inbound and outbound event counts per state for events
// created within the window ending now.
func RunEventStats(
	ctx context.Context,
	statsUseCase eventUseCase.StatsUseCase,
	writer io.Writer,
	window time.Duration,
	now time.Time,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if window <= 0 {
		return fmt.Errorf("window must be positive, got %s", window)
	}

	stats, err := statsUseCase.Counts(ctx, now.Add(-window).UTC())
	if err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}

	if format == "json" {
		return outputJSON(dto.MapStatsToResponse(stats), writer)
	}

	_, _ = fmt.Fprintf(writer, "Events since %s\n\n", stats.Since.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "%-12s %10s %10s\n", "STATE", "INBOUND", "OUTBOUND")
	for _, state := range eventDomain.States {
		_, _ = fmt.Fprintf(writer, "%-12s %10d %10d\n", state, stats.Inbound[state], stats.Outbound[state])
	}
	_, _ = fmt.Fprintf(writer, "%-12s %10d %10d\n", "TOTAL", stats.Inbound.Total(), stats.Outbound.Total())
	return nil
}
