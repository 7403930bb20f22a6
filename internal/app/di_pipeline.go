package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/allisson/relay/internal/database"
	pipelineHTTP "github.com/allisson/relay/internal/pipeline/http"
	pipelineRepository "github.com/allisson/relay/internal/pipeline/repository"
	pipelineService "github.com/allisson/relay/internal/pipeline/service"
	pipelineUseCase "github.com/allisson/relay/internal/pipeline/usecase"
)

type pipelineComponents struct {
	redisClient *redis.Client
	cache       pipelineUseCase.ActivePipelineCache
	repository  pipelineUseCase.PipelineRepository
	useCase     pipelineUseCase.PipelineUseCase
	handler     *pipelineHTTP.PipelineHandler

	cacheInit      sync.Once
	repositoryInit sync.Once
	useCaseInit    sync.Once
	handlerInit    sync.Once
}

// PipelineCache returns the active pipeline cache, or nil when no Redis URL
// is configured.
func (c *Container) PipelineCache() (pipelineUseCase.ActivePipelineCache, error) {
	var err error
	c.pipeline.cacheInit.Do(func() {
		c.pipeline.cache, err = c.initPipelineCache()
		if err != nil {
			c.initErrors["pipelineCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipelineCache"]; exists {
		return nil, storedErr
	}
	return c.pipeline.cache, nil
}

// PipelineRepository returns the pipeline repository for the configured dialect.
func (c *Container) PipelineRepository() (pipelineUseCase.PipelineRepository, error) {
	var err error
	c.pipeline.repositoryInit.Do(func() {
		c.pipeline.repository, err = c.initPipelineRepository()
		if err != nil {
			c.initErrors["pipelineRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipelineRepository"]; exists {
		return nil, storedErr
	}
	return c.pipeline.repository, nil
}

// PipelineUseCase returns the pipeline registry use case.
func (c *Container) PipelineUseCase() (pipelineUseCase.PipelineUseCase, error) {
	var err error
	c.pipeline.useCaseInit.Do(func() {
		c.pipeline.useCase, err = c.initPipelineUseCase()
		if err != nil {
			c.initErrors["pipelineUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipelineUseCase"]; exists {
		return nil, storedErr
	}
	return c.pipeline.useCase, nil
}

// PipelineHandler returns the HTTP handler for pipeline management.
func (c *Container) PipelineHandler() (*pipelineHTTP.PipelineHandler, error) {
	var err error
	c.pipeline.handlerInit.Do(func() {
		c.pipeline.handler, err = c.initPipelineHandler()
		if err != nil {
			c.initErrors["pipelineHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipelineHandler"]; exists {
		return nil, storedErr
	}
	return c.pipeline.handler, nil
}

func (c *Container) initPipelineCache() (pipelineUseCase.ActivePipelineCache, error) {
	if c.config.RegistryCacheRedisURL == "" {
		return nil, nil
	}

	client, err := pipelineService.NewRedisClient(context.Background(), c.config.RegistryCacheRedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to registry cache: %w", err)
	}
	c.pipeline.redisClient = client

	return pipelineService.NewRedisActivePipelineCache(client, c.config.RegistryCacheTTL), nil
}

func (c *Container) initPipelineRepository() (pipelineUseCase.PipelineRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for pipeline repository: %w", err)
	}

	dialect, err := c.Dialect()
	if err != nil {
		return nil, err
	}

	switch dialect {
	case database.DialectPostgreSQL:
		return pipelineRepository.NewPostgreSQLPipelineRepository(db), nil
	case database.DialectMySQL:
		return pipelineRepository.NewMySQLPipelineRepository(db), nil
	default:
		return pipelineRepository.NewSQLitePipelineRepository(db), nil
	}
}

func (c *Container) initPipelineUseCase() (pipelineUseCase.PipelineUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for pipeline use case: %w", err)
	}

	repository, err := c.PipelineRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline repository for pipeline use case: %w", err)
	}

	sources, err := c.SourceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get source use case for pipeline use case: %w", err)
	}

	cache, err := c.PipelineCache()
	if err != nil {
		return nil, err
	}

	baseUseCase := pipelineUseCase.NewPipelineUseCase(txManager, repository, sources, cache, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for pipeline use case: %w", err)
		}
		return pipelineUseCase.NewPipelineUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initPipelineHandler() (*pipelineHTTP.PipelineHandler, error) {
	useCase, err := c.PipelineUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline use case for pipeline handler: %w", err)
	}
	return pipelineHTTP.NewPipelineHandler(useCase, c.Logger()), nil
}
