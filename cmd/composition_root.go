package cmd

import (
	"fmt"
	"log/slog"

	httpadapter "custody/internal/adapters/in/http"
	"custody/internal/adapters/out/kafka"
	"custody/internal/adapters/out/ledger"
	"custody/internal/adapters/out/ledger/contract"
	"custody/internal/adapters/out/ledger/memledger"
	"custody/internal/adapters/out/ledger/pgledger"
	"custody/internal/adapters/out/postgres"
	"custody/internal/adapters/out/postgres/userrepo"
	"custody/internal/core/application/projector"
	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/ports"
	"custody/internal/jobs"

	"gorm.io/gorm"
)

// publisher is an event publisher the root must close on shutdown.
type publisher interface {
	ports.OrderEventPublisher
	Close() error
}

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	uowFactory *postgres.GormUnitOfWorkFactory
	profiles   *userrepo.GormProfileDirectory
	gateway    *ledger.Gateway
	publisher  publisher
	projector  *projector.Projector
}

// NewCompositionRoot migrates the schema and builds the shared adapters. The
// projection store always lives in postgres; the ledger engine runs over the
// store LEDGER_DRIVER selects.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	if err := postgres.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("migrate projection store: %w", err)
	}

	var store contract.Store
	switch cfg.LedgerDriver {
	case LedgerDriverMemory:
		logger.Warn("ledger runs in memory, custody records are lost on restart")
		store = memledger.NewStore()
	default:
		if err := pgledger.Migrate(gormDB); err != nil {
			return nil, fmt.Errorf("migrate ledger: %w", err)
		}
		pgStore, err := pgledger.NewGormStore(gormDB)
		if err != nil {
			return nil, err
		}
		store = pgStore
	}

	engine, err := contract.NewEngine(store, logger)
	if err != nil {
		return nil, err
	}
	gateway, err := ledger.NewGateway(engine)
	if err != nil {
		return nil, err
	}

	var pub publisher = kafka.NewLogPublisher(logger)
	if cfg.KafkaEnabled {
		pub, err = kafka.NewOrderEventPublisher(kafka.NewWriter(cfg.KafkaHost, cfg.KafkaOrderChangedTopic))
		if err != nil {
			return nil, err
		}
	}

	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)
	proj, err := projector.New(uowFactory, gateway, pub, projector.Config{
		SyncTimeout: cfg.ProjectionSyncTimeout,
		PageSize:    cfg.ResyncPageSize,
		Concurrency: cfg.ResyncConcurrency,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		logger:     logger,
		uowFactory: uowFactory,
		profiles:   userrepo.NewGormProfileDirectory(gormDB),
		gateway:    gateway,
		publisher:  pub,
		projector:  proj,
	}, nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateHandoffCoordinator() (*commands.HandoffCoordinator, error) {
	return commands.NewHandoffCoordinator(c.gateway, c.profiles, c.projector, c.cfg.LedgerTimeout, c.logger)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() (*commands.CreateOrderCommandHandler, error) {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateConfirmOrderCommandHandler() (*commands.ConfirmOrderCommandHandler, error) {
	return commands.NewConfirmOrderCommandHandler(
		c.orderUoWFactory(), c.gateway, c.profiles, c.projector, c.cfg.LedgerTimeout, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() (*commands.CancelOrderCommandHandler, error) {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateSaveProfileCommandHandler() (*commands.SaveProfileCommandHandler, error) {
	return commands.NewSaveProfileCommandHandler(c.profiles)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.projector, c.cfg.ResyncSchedule, c.logger)
}

// CreateServer assembles every use case behind the HTTP server.
func (c *CompositionRoot) CreateServer() (*httpadapter.Server, error) {
	coordinator, err := c.CreateHandoffCoordinator()
	if err != nil {
		return nil, err
	}
	createOrder, err := c.CreateCreateOrderCommandHandler()
	if err != nil {
		return nil, err
	}
	confirmOrder, err := c.CreateConfirmOrderCommandHandler()
	if err != nil {
		return nil, err
	}
	cancelOrder, err := c.CreateCancelOrderCommandHandler()
	if err != nil {
		return nil, err
	}
	saveProfile, err := c.CreateSaveProfileCommandHandler()
	if err != nil {
		return nil, err
	}
	getOrder, err := queries.NewGetOrderQueryHandler(c.gormDB)
	if err != nil {
		return nil, err
	}
	listMyOrders, err := queries.NewListMyOrdersQueryHandler(c.gormDB)
	if err != nil {
		return nil, err
	}
	getDelivery, err := queries.NewGetDeliveryQueryHandler(c.gateway, c.cfg.LedgerTimeout)
	if err != nil {
		return nil, err
	}
	history, err := queries.NewGetDeliveryHistoryQueryHandler(c.gateway, c.cfg.LedgerTimeout)
	if err != nil {
		return nil, err
	}
	lister, err := queries.NewListDeliveriesQueryHandler(c.gateway, c.cfg.LedgerTimeout)
	if err != nil {
		return nil, err
	}

	return httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:        createOrder,
		ConfirmOrder:       confirmOrder,
		CancelOrder:        cancelOrder,
		SaveProfile:        saveProfile,
		Custody:            coordinator,
		GetOrder:           getOrder,
		ListMyOrders:       listMyOrders,
		GetDelivery:        getDelivery,
		GetDeliveryHistory: history,
		ListDeliveries:     lister,
		Sweeper:            c.projector,
	})
}

// Close releases the event publisher.
func (c *CompositionRoot) Close() error {
	return c.publisher.Close()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
