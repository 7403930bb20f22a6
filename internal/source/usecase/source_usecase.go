package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/database"
	"github.com/allisson/relay/internal/errors"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

type sourceUseCase struct {
	txManager  database.TxManager
	sourceRepo SourceRepository
	keyGen     sourceDomain.KeyGenerator
	now        func() time.Time
}

func (s *sourceUseCase) Create(
	ctx context.Context,
	input *sourceDomain.CreateSourceInput,
) (*sourceDomain.Source, error) {
	now := s.now()
	source := &sourceDomain.Source{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      input.Name,
		IsActive:  input.IsActive,
		IsSecured: input.IsSecured,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sourceRepo.Create(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

func (s *sourceUseCase) Update(
	ctx context.Context,
	sourceID uuid.UUID,
	input *sourceDomain.UpdateSourceInput,
) (*sourceDomain.Source, error) {
	var source *sourceDomain.Source
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		source, err = s.sourceRepo.GetForUpdate(ctx, sourceID)
		if err != nil {
			return err
		}

		source.Name = input.Name
		source.IsActive = input.IsActive
		source.IsSecured = input.IsSecured
		source.UpdatedAt = s.now()

		return s.sourceRepo.Update(ctx, source)
	})
	if err != nil {
		return nil, err
	}
	return source, nil
}

func (s *sourceUseCase) Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	return s.sourceRepo.Get(ctx, sourceID)
}

func (s *sourceUseCase) List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error) {
	return s.sourceRepo.List(ctx, offset, limit)
}

func (s *sourceUseCase) Disable(ctx context.Context, sourceID uuid.UUID) error {
	return s.txManager.WithTx(ctx, func(ctx context.Context) error {
		source, err := s.sourceRepo.GetForUpdate(ctx, sourceID)
		if err != nil {
			return err
		}

		source.IsActive = false
		source.UpdatedAt = s.now()
		return s.sourceRepo.Update(ctx, source)
	})
}

func (s *sourceUseCase) SetupKeys(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	return s.mutateKeys(ctx, sourceID, func(source *sourceDomain.Source, now time.Time) error {
		return source.SetupNewKeys(s.keyGen, now)
	})
}

func (s *sourceUseCase) RotateKeys(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	return s.mutateKeys(ctx, sourceID, func(source *sourceDomain.Source, now time.Time) error {
		return source.RotateKeys(s.keyGen, now)
	})
}

// mutateKeys applies a key change while holding the source row lock, so two
// concurrent rotations cannot both demote the same primary.
func (s *sourceUseCase) mutateKeys(
	ctx context.Context,
	sourceID uuid.UUID,
	mutate func(source *sourceDomain.Source, now time.Time) error,
) (*sourceDomain.Source, error) {
	var source *sourceDomain.Source
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		source, err = s.sourceRepo.GetForUpdate(ctx, sourceID)
		if err != nil {
			return err
		}

		if err := mutate(source, s.now()); err != nil {
			return err
		}
		return s.sourceRepo.Update(ctx, source)
	})
	if err != nil {
		return nil, err
	}
	return source, nil
}

func (s *sourceUseCase) Authenticate(
	ctx context.Context,
	sourceID uuid.UUID,
	presentedKey string,
) (*sourceDomain.Source, error) {
	source, err := s.sourceRepo.Get(ctx, sourceID)
	if err != nil {
		if errors.Is(err, sourceDomain.ErrSourceNotFound) {
			return nil, sourceDomain.ErrSourceKeyMismatch
		}
		return nil, err
	}
	if !source.IsActive {
		return nil, sourceDomain.ErrSourceKeyMismatch
	}
	if source.IsSecured && !source.Authenticate(presentedKey) {
		return nil, sourceDomain.ErrSourceKeyMismatch
	}
	return source, nil
}

// NewSourceUseCase creates a SourceUseCase that issues keys with sourceDomain.GenerateKey.
func NewSourceUseCase(txManager database.TxManager, sourceRepo SourceRepository) SourceUseCase {
	return &sourceUseCase{
		txManager:  txManager,
		sourceRepo: sourceRepo,
		keyGen:     sourceDomain.GenerateKey,
		now:        func() time.Time { return time.Now().UTC() },
	}
}
