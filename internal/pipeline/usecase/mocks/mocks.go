// Package mocks provides mock implementations of the pipeline use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// MockPipelineRepository is a mock implementation of PipelineRepository.
type MockPipelineRepository struct {
	mock.Mock
}

func (m *MockPipelineRepository) Create(ctx context.Context, pipeline *pipelineDomain.Pipeline) error {
	args := m.Called(ctx, pipeline)
	return args.Error(0)
}

func (m *MockPipelineRepository) Update(ctx context.Context, pipeline *pipelineDomain.Pipeline) error {
	args := m.Called(ctx, pipeline)
	return args.Error(0)
}

func (m *MockPipelineRepository) Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, pipelineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineRepository) GetByName(
	ctx context.Context,
	sourceID uuid.UUID,
	name string,
) (*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, sourceID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineRepository) List(
	ctx context.Context,
	filter pipelineDomain.ListFilter,
) ([]*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineRepository) ListActive(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pipelineDomain.Pipeline), args.Error(1)
}

// MockSourceGetter is a mock implementation of SourceGetter.
type MockSourceGetter struct {
	mock.Mock
}

func (m *MockSourceGetter) Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourceDomain.Source), args.Error(1)
}

// MockActivePipelineCache is a mock implementation of ActivePipelineCache.
type MockActivePipelineCache struct {
	mock.Mock
}

func (m *MockActivePipelineCache) Get(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, bool, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*pipelineDomain.Pipeline), args.Bool(1), args.Error(2)
}

func (m *MockActivePipelineCache) Set(
	ctx context.Context,
	sourceID uuid.UUID,
	pipelines []*pipelineDomain.Pipeline,
) error {
	args := m.Called(ctx, sourceID, pipelines)
	return args.Error(0)
}

func (m *MockActivePipelineCache) Invalidate(ctx context.Context, sourceID uuid.UUID) error {
	args := m.Called(ctx, sourceID)
	return args.Error(0)
}

// MockPipelineUseCase is a mock implementation of PipelineUseCase.
type MockPipelineUseCase struct {
	mock.Mock
}

func (m *MockPipelineUseCase) Create(
	ctx context.Context,
	input *pipelineDomain.CreatePipelineInput,
) (*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineUseCase) Update(
	ctx context.Context,
	pipelineID uuid.UUID,
	input *pipelineDomain.UpdatePipelineInput,
) (*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, pipelineID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineUseCase) Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, pipelineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineUseCase) List(
	ctx context.Context,
	filter pipelineDomain.ListFilter,
) ([]*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineUseCase) Deactivate(ctx context.Context, pipelineID uuid.UUID) error {
	args := m.Called(ctx, pipelineID)
	return args.Error(0)
}

func (m *MockPipelineUseCase) ListActivePipelines(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pipelineDomain.Pipeline), args.Error(1)
}

func (m *MockPipelineUseCase) Import(
	ctx context.Context,
	definitions []pipelineDomain.Definition,
) (*pipelineDomain.ImportResult, error) {
	args := m.Called(ctx, definitions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipelineDomain.ImportResult), args.Error(1)
}
