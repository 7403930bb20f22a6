// Package mocks provides mock implementations of the source use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// MockSourceRepository is a mock implementation of SourceRepository.
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) Create(ctx context.Context, source *sourceDomain.Source) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockSourceRepository) Update(ctx context.Context, source *sourceDomain.Source) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockSourceRepository) Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

func (m *MockSourceRepository) GetForUpdate(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

func (m *MockSourceRepository) List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sourceDomain.Source), args.Error(1)
}

// MockSourceUseCase is a mock implementation of SourceUseCase.
type MockSourceUseCase struct {
	mock.Mock
}

func (m *MockSourceUseCase) Create(
	ctx context.Context,
	input *sourceDomain.CreateSourceInput,
) (*sourceDomain.Source, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

func (m *MockSourceUseCase) Update(
	ctx context.Context,
	sourceID uuid.UUID,
	input *sourceDomain.UpdateSourceInput,
) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

func (m *MockSourceUseCase) Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

func (m *MockSourceUseCase) List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sourceDomain.Source), args.Error(1)
}

func (m *MockSourceUseCase) Disable(ctx context.Context, sourceID uuid.UUID) error {
	args := m.Called(ctx, sourceID)
	return args.Error(0)
}

func (m *MockSourceUseCase) SetupKeys(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

func (m *MockSourceUseCase) RotateKeys(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

func (m *MockSourceUseCase) Authenticate(
	ctx context.Context,
	sourceID uuid.UUID,
	presentedKey string,
) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID, presentedKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}
