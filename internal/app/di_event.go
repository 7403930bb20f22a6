package app

import (
	"fmt"
	"sync"

	"github.com/allisson/relay/internal/database"
	eventHTTP "github.com/allisson/relay/internal/event/http"
	eventRepository "github.com/allisson/relay/internal/event/repository"
	eventUseCase "github.com/allisson/relay/internal/event/usecase"
)

type eventComponents struct {
	inboundRepository  eventUseCase.InboundEventRepository
	outboundRepository eventUseCase.OutboundEventRepository
	ingestUseCase      eventUseCase.IngestUseCase
	eventUseCase       eventUseCase.EventUseCase
	requeueUseCase     eventUseCase.RequeueUseCase
	statsUseCase       eventUseCase.StatsUseCase
	scheduler          *eventUseCase.Scheduler
	ingestHandler      *eventHTTP.IngestHandler
	eventHandler       *eventHTTP.EventHandler

	repositoriesInit   sync.Once
	ingestUseCaseInit  sync.Once
	eventUseCaseInit   sync.Once
	requeueUseCaseInit sync.Once
	statsUseCaseInit   sync.Once
	schedulerInit      sync.Once
	ingestHandlerInit  sync.Once
	eventHandlerInit   sync.Once
}

// InboundEventRepository returns the inbound queue repository for the configured dialect.
func (c *Container) InboundEventRepository() (eventUseCase.InboundEventRepository, error) {
	if err := c.initEventRepositoriesOnce(); err != nil {
		return nil, err
	}
	return c.event.inboundRepository, nil
}

// OutboundEventRepository returns the outbound queue repository for the configured dialect.
func (c *Container) OutboundEventRepository() (eventUseCase.OutboundEventRepository, error) {
	if err := c.initEventRepositoriesOnce(); err != nil {
		return nil, err
	}
	return c.event.outboundRepository, nil
}

// IngestUseCase returns the ingestion use case.
func (c *Container) IngestUseCase() (eventUseCase.IngestUseCase, error) {
	var err error
	c.event.ingestUseCaseInit.Do(func() {
		c.event.ingestUseCase, err = c.initIngestUseCase()
		if err != nil {
			c.initErrors["ingestUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ingestUseCase"]; exists {
		return nil, storedErr
	}
	return c.event.ingestUseCase, nil
}

// EventUseCase returns the queue read and delivery hook use case.
func (c *Container) EventUseCase() (eventUseCase.EventUseCase, error) {
	var err error
	c.event.eventUseCaseInit.Do(func() {
		c.event.eventUseCase, err = c.initEventUseCase()
		if err != nil {
			c.initErrors["eventUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventUseCase"]; exists {
		return nil, storedErr
	}
	return c.event.eventUseCase, nil
}

// RequeueUseCase returns the operator requeue use case.
func (c *Container) RequeueUseCase() (eventUseCase.RequeueUseCase, error) {
	var err error
	c.event.requeueUseCaseInit.Do(func() {
		c.event.requeueUseCase, err = c.initRequeueUseCase()
		if err != nil {
			c.initErrors["requeueUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["requeueUseCase"]; exists {
		return nil, storedErr
	}
	return c.event.requeueUseCase, nil
}

// StatsUseCase returns the queue statistics use case.
func (c *Container) StatsUseCase() (eventUseCase.StatsUseCase, error) {
	var err error
	c.event.statsUseCaseInit.Do(func() {
		c.event.statsUseCase, err = c.initStatsUseCase()
		if err != nil {
			c.initErrors["statsUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["statsUseCase"]; exists {
		return nil, storedErr
	}
	return c.event.statsUseCase, nil
}

// Scheduler returns the claim scheduler with its dispatcher, processor and,
// when a stranded claim timeout is configured, the sweeper.
func (c *Container) Scheduler() (*eventUseCase.Scheduler, error) {
	var err error
	c.event.schedulerInit.Do(func() {
		c.event.scheduler, err = c.initScheduler()
		if err != nil {
			c.initErrors["scheduler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scheduler"]; exists {
		return nil, storedErr
	}
	return c.event.scheduler, nil
}

// IngestHandler returns the public ingestion HTTP handler.
func (c *Container) IngestHandler() (*eventHTTP.IngestHandler, error) {
	var err error
	c.event.ingestHandlerInit.Do(func() {
		var useCase eventUseCase.IngestUseCase
		useCase, err = c.IngestUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get ingest use case for ingest handler: %w", err)
			c.initErrors["ingestHandler"] = err
			return
		}
		c.event.ingestHandler = eventHTTP.NewIngestHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ingestHandler"]; exists {
		return nil, storedErr
	}
	return c.event.ingestHandler, nil
}

// EventHandler returns the admin HTTP handler for both queues.
func (c *Container) EventHandler() (*eventHTTP.EventHandler, error) {
	var err error
	c.event.eventHandlerInit.Do(func() {
		c.event.eventHandler, err = c.initEventHandler()
		if err != nil {
			c.initErrors["eventHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventHandler"]; exists {
		return nil, storedErr
	}
	return c.event.eventHandler, nil
}

func (c *Container) initEventRepositoriesOnce() error {
	c.event.repositoriesInit.Do(func() {
		if err := c.initEventRepositories(); err != nil {
			c.initErrors["eventRepositories"] = err
		}
	})
	return c.initErrors["eventRepositories"]
}

func (c *Container) initEventRepositories() error {
	db, err := c.DB()
	if err != nil {
		return fmt.Errorf("failed to get database for event repositories: %w", err)
	}

	dialect, err := c.Dialect()
	if err != nil {
		return err
	}

	switch dialect {
	case database.DialectPostgreSQL:
		c.event.inboundRepository = eventRepository.NewPostgreSQLInboundEventRepository(db)
		c.event.outboundRepository = eventRepository.NewPostgreSQLOutboundEventRepository(db)
	case database.DialectMySQL:
		c.event.inboundRepository = eventRepository.NewMySQLInboundEventRepository(db)
		c.event.outboundRepository = eventRepository.NewMySQLOutboundEventRepository(db)
	default:
		c.event.inboundRepository = eventRepository.NewSQLiteInboundEventRepository(db)
		c.event.outboundRepository = eventRepository.NewSQLiteOutboundEventRepository(db)
	}
	return nil
}

func (c *Container) initIngestUseCase() (eventUseCase.IngestUseCase, error) {
	sources, err := c.SourceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get source use case for ingest use case: %w", err)
	}

	inboundRepo, err := c.InboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound repository for ingest use case: %w", err)
	}

	baseUseCase := eventUseCase.NewIngestUseCase(sources, inboundRepo)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for ingest use case: %w", err)
		}
		return eventUseCase.NewIngestUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initEventUseCase() (eventUseCase.EventUseCase, error) {
	inboundRepo, err := c.InboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound repository for event use case: %w", err)
	}

	outboundRepo, err := c.OutboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbound repository for event use case: %w", err)
	}

	baseUseCase := eventUseCase.NewEventUseCase(inboundRepo, outboundRepo)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for event use case: %w", err)
		}
		return eventUseCase.NewEventUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initRequeueUseCase() (eventUseCase.RequeueUseCase, error) {
	registry, err := c.PipelineUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline use case for requeue use case: %w", err)
	}

	inboundRepo, err := c.InboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound repository for requeue use case: %w", err)
	}

	outboundRepo, err := c.OutboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbound repository for requeue use case: %w", err)
	}

	eventMetrics, err := c.EventMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get event metrics for requeue use case: %w", err)
	}

	baseUseCase := eventUseCase.NewRequeueUseCase(registry, inboundRepo, outboundRepo, eventMetrics, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for requeue use case: %w", err)
		}
		return eventUseCase.NewRequeueUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initStatsUseCase() (eventUseCase.StatsUseCase, error) {
	inboundRepo, err := c.InboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound repository for stats use case: %w", err)
	}

	outboundRepo, err := c.OutboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbound repository for stats use case: %w", err)
	}

	return eventUseCase.NewStatsUseCase(inboundRepo, outboundRepo), nil
}

func (c *Container) initScheduler() (*eventUseCase.Scheduler, error) {
	schedulerConfig := eventUseCase.SchedulerConfig{
		Interval:  c.config.SchedulerInterval,
		BatchSize: c.config.SchedulerBatchSize,
		Workers:   c.config.SchedulerWorkers,
		WorkerID:  c.config.WorkerID,
	}
	if err := schedulerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduler configuration: %w", err)
	}

	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for scheduler: %w", err)
	}

	registry, err := c.PipelineUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline use case for scheduler: %w", err)
	}

	inboundRepo, err := c.InboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound repository for scheduler: %w", err)
	}

	outboundRepo, err := c.OutboundEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbound repository for scheduler: %w", err)
	}

	eventMetrics, err := c.EventMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get event metrics for scheduler: %w", err)
	}

	tracer := c.Tracer()
	dispatcher := eventUseCase.NewDispatcher(registry, outboundRepo, tracer)
	processor := eventUseCase.NewProcessor(dispatcher, inboundRepo, eventMetrics, logger)

	var sweeper *eventUseCase.Sweeper
	if c.config.StrandedClaimTimeout > 0 {
		sweeperConfig := eventUseCase.SweeperConfig{
			Timeout:  c.config.StrandedClaimTimeout,
			Interval: c.config.StrandedSweepInterval,
		}
		if err := sweeperConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid stranded claim sweeper configuration: %w", err)
		}
		sweeper = eventUseCase.NewSweeper(sweeperConfig, inboundRepo, eventMetrics, logger)
	}

	return eventUseCase.NewScheduler(
		schedulerConfig,
		txManager,
		inboundRepo,
		processor,
		sweeper,
		eventMetrics,
		tracer,
		logger,
	), nil
}

func (c *Container) initEventHandler() (*eventHTTP.EventHandler, error) {
	eventUC, err := c.EventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get event use case for event handler: %w", err)
	}

	requeueUC, err := c.RequeueUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get requeue use case for event handler: %w", err)
	}

	statsUC, err := c.StatsUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats use case for event handler: %w", err)
	}

	return eventHTTP.NewEventHandler(eventUC, requeueUC, statsUC, c.Logger()), nil
}
