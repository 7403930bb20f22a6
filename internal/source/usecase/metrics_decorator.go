package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/metrics"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// sourceUseCaseWithMetrics decorates SourceUseCase with metrics instrumentation.
type sourceUseCaseWithMetrics struct {
	next    SourceUseCase
	metrics metrics.BusinessMetrics
}

// NewSourceUseCaseWithMetrics wraps a SourceUseCase with metrics recording.
func NewSourceUseCaseWithMetrics(useCase SourceUseCase, m metrics.BusinessMetrics) SourceUseCase {
	return &sourceUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *sourceUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, s.metrics, "sources", operation, start, err)
}

func (s *sourceUseCaseWithMetrics) Create(
	ctx context.Context,
	input *sourceDomain.CreateSourceInput,
) (*sourceDomain.Source, error) {
	start := time.Now()
	source, err := s.next.Create(ctx, input)
	s.record(ctx, "source_create", start, err)
	return source, err
}

func (s *sourceUseCaseWithMetrics) Update(
	ctx context.Context,
	sourceID uuid.UUID,
	input *sourceDomain.UpdateSourceInput,
) (*sourceDomain.Source, error) {
	start := time.Now()
	source, err := s.next.Update(ctx, sourceID, input)
	s.record(ctx, "source_update", start, err)
	return source, err
}

func (s *sourceUseCaseWithMetrics) Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	start := time.Now()
	source, err := s.next.Get(ctx, sourceID)
	s.record(ctx, "source_get", start, err)
	return source, err
}

func (s *sourceUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error) {
	start := time.Now()
	sources, err := s.next.List(ctx, offset, limit)
	s.record(ctx, "source_list", start, err)
	return sources, err
}

func (s *sourceUseCaseWithMetrics) Disable(ctx context.Context, sourceID uuid.UUID) error {
	start := time.Now()
	err := s.next.Disable(ctx, sourceID)
	s.record(ctx, "source_disable", start, err)
	return err
}

func (s *sourceUseCaseWithMetrics) SetupKeys(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	start := time.Now()
	source, err := s.next.SetupKeys(ctx, sourceID)
	s.record(ctx, "source_setup_keys", start, err)
	return source, err
}

func (s *sourceUseCaseWithMetrics) RotateKeys(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	start := time.Now()
	source, err := s.next.RotateKeys(ctx, sourceID)
	s.record(ctx, "source_rotate_keys", start, err)
	return source, err
}

func (s *sourceUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	sourceID uuid.UUID,
	presentedKey string,
) (*sourceDomain.Source, error) {
	start := time.Now()
	source, err := s.next.Authenticate(ctx, sourceID, presentedKey)
	s.record(ctx, "source_authenticate", start, err)
	return source, err
}
