package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	validation "github.com/jellydator/validation"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/relay/internal/database"
	apperrors "github.com/allisson/relay/internal/errors"
	eventDomain "github.com/allisson/relay/internal/event/domain"
	"github.com/allisson/relay/internal/metrics"
	appValidation "github.com/allisson/relay/internal/validation"
)

// SchedulerConfig holds claim loop configuration.
type SchedulerConfig struct {
	Interval  time.Duration
	BatchSize int
	Workers   int
	WorkerID  string
}

// Validate rejects settings the poll loop cannot run with: a non-positive
// interval panics in time.NewTicker and a non-positive batch never claims.
func (c SchedulerConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Interval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.BatchSize, validation.Required, validation.Min(1)),
	)
	return appValidation.WrapValidationError(err)
}

// Scheduler polls the inbound queue on a fixed interval, claims batches and
// hands each claimed event to the processor.
type Scheduler struct {
	config      SchedulerConfig
	txManager   database.TxManager
	inboundRepo InboundEventRepository
	processor   EventProcessor
	sweeper     *Sweeper
	metrics     metrics.EventMetrics
	tracer      trace.Tracer
	logger      *slog.Logger
	now         func() time.Time
}

// NewScheduler creates a Scheduler. Sweeper may be nil to leave stranded
// claims for an operator. A nil tracer disables spans.
func NewScheduler(
	config SchedulerConfig,
	txManager database.TxManager,
	inboundRepo InboundEventRepository,
	processor EventProcessor,
	sweeper *Sweeper,
	eventMetrics metrics.EventMetrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Scheduler {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Scheduler{
		config:      config,
		txManager:   txManager,
		inboundRepo: inboundRepo,
		processor:   processor,
		sweeper:     sweeper,
		metrics:     eventMetrics,
		tracer:      tracer,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Claim takes one batch in its own transaction. The transaction commits
// before any event is dispatched, so row locks are never held across fan-out.
func (s *Scheduler) Claim(ctx context.Context, workerID string) ([]*eventDomain.InboundEvent, error) {
	ctx, span := s.tracer.Start(ctx, "event.claim", trace.WithAttributes(
		attribute.String("worker.id", workerID),
		attribute.Int("claim.batch_size", s.config.BatchSize),
	))
	defer span.End()

	claim := eventDomain.NewClaim(workerID, s.now())
	var events []*eventDomain.InboundEvent
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		events, err = s.inboundRepo.ClaimQueued(ctx, s.config.BatchSize, claim)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("claim.count", len(events)))
	return events, nil
}

// RunOnce claims one batch and processes it. A claimed batch is always
// processed to the end, even when ctx is cancelled midway, so shutdown does
// not strand the events this worker holds. Returns the number of events
// claimed.
func (s *Scheduler) RunOnce(ctx context.Context, workerID string) (int, error) {
	if s.config.BatchSize < 1 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "batch size must be positive, got %d", s.config.BatchSize)
	}

	events, err := s.Claim(ctx, workerID)
	if err != nil {
		return 0, fmt.Errorf("failed to claim inbound events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	s.metrics.RecordClaimed(ctx, workerID, len(events))
	s.logger.Info("processing claimed events",
		slog.String("worker_id", workerID),
		slog.Int("count", len(events)),
	)

	processCtx := context.WithoutCancel(ctx)
	for _, event := range events {
		if _, err := s.processor.Process(processCtx, event); err != nil && !errors.Is(err, eventDomain.ErrClaimLost) {
			s.logger.Error("failed to finalize event",
				slog.String("event_id", event.ID.String()),
				slog.String("worker_id", workerID),
				slog.Any("error", err),
			)
		}
	}
	return len(events), nil
}

// Start runs the poll loop for one worker until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, workerID string) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.logger.Info("starting event scheduler",
		slog.String("worker_id", workerID),
		slog.Duration("interval", s.config.Interval),
		slog.Int("batch_size", s.config.BatchSize),
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping event scheduler", slog.String("worker_id", workerID))
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx, workerID); err != nil && ctx.Err() == nil {
				s.logger.Error("failed to run scheduler tick",
					slog.String("worker_id", workerID),
					slog.Any("error", err),
				)
			}
		}
	}
}

// Run starts the configured number of workers plus the sweeper, when set,
// and blocks until ctx is cancelled and all of them have returned.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < s.config.Workers; i++ {
		workerID := fmt.Sprintf("%s-%d", s.config.WorkerID, i)
		g.Go(func() error {
			return s.Start(ctx, workerID)
		})
	}
	if s.sweeper != nil {
		g.Go(func() error {
			return s.sweeper.Start(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
