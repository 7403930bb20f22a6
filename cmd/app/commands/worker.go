package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allisson/relay/internal/app"
	"github.com/allisson/relay/internal/config"
)

// RunWorker runs the claim scheduler until SIGINT/SIGTERM. Each worker
// finishes the batch it already claimed before returning, bounded by
// ServerShutdownTimeout. The metrics server runs alongside when enabled.
func RunWorker(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting worker",
		slog.String("version", version),
		slog.String("worker_id", cfg.WorkerID),
		slog.Int("workers", cfg.SchedulerWorkers),
		slog.Bool("sweeper_enabled", cfg.StrandedClaimTimeout > 0),
	)

	defer closeContainer(container, logger)

	scheduler, err := container.Scheduler()
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metricsErr := make(chan error, 1)
	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				metricsErr <- fmt.Errorf("metrics server error: %w", err)
				cancel()
			}
		}()
	}

	schedulerDone := make(chan error, 1)
	go func() {
		schedulerDone <- scheduler.Run(ctx)
	}()

	var runErrors []error

	select {
	case err := <-schedulerDone:
		if err != nil {
			runErrors = append(runErrors, fmt.Errorf("scheduler error: %w", err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, waiting for claimed batches")
		select {
		case err := <-schedulerDone:
			if err != nil {
				runErrors = append(runErrors, fmt.Errorf("scheduler error: %w", err))
			}
		case <-time.After(cfg.ServerShutdownTimeout):
			runErrors = append(runErrors, errors.New("scheduler did not stop within shutdown timeout"))
		}
	}

	select {
	case err := <-metricsErr:
		runErrors = append(runErrors, err)
	default:
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			runErrors = append(runErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	logger.Info("worker stopped")
	return errors.Join(runErrors...)
}
