package app

import (
	"fmt"
	"sync"

	"github.com/allisson/relay/internal/database"
	sourceHTTP "github.com/allisson/relay/internal/source/http"
	sourceRepository "github.com/allisson/relay/internal/source/repository"
	sourceUseCase "github.com/allisson/relay/internal/source/usecase"
)

type sourceComponents struct {
	repository sourceUseCase.SourceRepository
	useCase    sourceUseCase.SourceUseCase
	handler    *sourceHTTP.SourceHandler

	repositoryInit sync.Once
	useCaseInit    sync.Once
	handlerInit    sync.Once
}

// SourceRepository returns the source repository for the configured dialect.
func (c *Container) SourceRepository() (sourceUseCase.SourceRepository, error) {
	var err error
	c.source.repositoryInit.Do(func() {
		c.source.repository, err = c.initSourceRepository()
		if err != nil {
			c.initErrors["sourceRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sourceRepository"]; exists {
		return nil, storedErr
	}
	return c.source.repository, nil
}

// SourceUseCase returns the source use case.
func (c *Container) SourceUseCase() (sourceUseCase.SourceUseCase, error) {
	var err error
	c.source.useCaseInit.Do(func() {
		c.source.useCase, err = c.initSourceUseCase()
		if err != nil {
			c.initErrors["sourceUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sourceUseCase"]; exists {
		return nil, storedErr
	}
	return c.source.useCase, nil
}

// SourceHandler returns the HTTP handler for source management.
func (c *Container) SourceHandler() (*sourceHTTP.SourceHandler, error) {
	var err error
	c.source.handlerInit.Do(func() {
		c.source.handler, err = c.initSourceHandler()
		if err != nil {
			c.initErrors["sourceHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sourceHandler"]; exists {
		return nil, storedErr
	}
	return c.source.handler, nil
}

func (c *Container) initSourceRepository() (sourceUseCase.SourceRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for source repository: %w", err)
	}

	secretBox, err := c.SecretBox()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret box for source repository: %w", err)
	}

	dialect, err := c.Dialect()
	if err != nil {
		return nil, err
	}

	switch dialect {
	case database.DialectPostgreSQL:
		return sourceRepository.NewPostgreSQLSourceRepository(db, secretBox), nil
	case database.DialectMySQL:
		return sourceRepository.NewMySQLSourceRepository(db, secretBox), nil
	default:
		return sourceRepository.NewSQLiteSourceRepository(db, secretBox), nil
	}
}

func (c *Container) initSourceUseCase() (sourceUseCase.SourceUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for source use case: %w", err)
	}

	repository, err := c.SourceRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get source repository for source use case: %w", err)
	}

	baseUseCase := sourceUseCase.NewSourceUseCase(txManager, repository)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for source use case: %w", err)
		}
		return sourceUseCase.NewSourceUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initSourceHandler() (*sourceHTTP.SourceHandler, error) {
	useCase, err := c.SourceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get source use case for source handler: %w", err)
	}
	return sourceHTTP.NewSourceHandler(useCase, c.Logger()), nil
}
