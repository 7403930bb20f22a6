package usecase

import (
	"context"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/relay/internal/metrics"
	appValidation "github.com/allisson/relay/internal/validation"
)

// SweeperConfig holds stranded claim recovery configuration.
type SweeperConfig struct {
	Timeout  time.Duration
	Interval time.Duration
}

// Validate rejects a non-positive timeout or sweep interval.
func (c SweeperConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Nanosecond)),
		validation.Field(&c.Interval, validation.Required, validation.Min(time.Millisecond)),
	)
	return appValidation.WrapValidationError(err)
}

// Sweeper returns IN_PROGRESS events whose claim is older than Timeout to
// QUEUED, so events held by a crashed worker are claimed again. The old
// holder can no longer finalize them.
type Sweeper struct {
	config      SweeperConfig
	inboundRepo InboundEventRepository
	metrics     metrics.EventMetrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewSweeper creates a Sweeper.
func NewSweeper(
	config SweeperConfig,
	inboundRepo InboundEventRepository,
	eventMetrics metrics.EventMetrics,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		config:      config,
		inboundRepo: inboundRepo,
		metrics:     eventMetrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SweepOnce requeues every stranded claim and returns how many were requeued.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	now := s.now()
	count, err := s.inboundRepo.RequeueStranded(ctx, now.Add(-s.config.Timeout), now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.metrics.RecordRequeued(ctx, "stranded", count)
		s.logger.Warn("requeued stranded events", slog.Int64("count", count))
	}
	return count, nil
}

// Start sweeps on a fixed interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.logger.Info("starting stranded claim sweeper",
		slog.Duration("timeout", s.config.Timeout),
		slog.Duration("interval", s.config.Interval),
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping stranded claim sweeper")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("failed to sweep stranded claims", slog.Any("error", err))
			}
		}
	}
}
