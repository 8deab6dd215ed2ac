package cmd

import (
	"context"
	"log/slog"
	"time"

	httpin "fleet/internal/adapters/in/http"
	"fleet/internal/adapters/out/mqttevents"
	"fleet/internal/adapters/out/postgres"
	"fleet/internal/adapters/out/rediscache"
	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/ports"
	"fleet/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters into use case handlers. cache and publisher
// are optional.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	cache      *rediscache.Cache
	publisher  *mqttevents.Publisher
	clock      ports.Clock
	logger     *slog.Logger
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	cache *rediscache.Cache,
	publisher *mqttevents.Publisher,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, logger),
		cache:      cache,
		publisher:  publisher,
		clock:      ports.ClockFunc(time.Now),
		logger:     logger,
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) postCommit() commands.PostCommit {
	var (
		invalidator ports.CacheInvalidator
		events      ports.EventPublisher
	)
	if c.cache != nil {
		invalidator = c.cache
	}
	if c.publisher != nil {
		events = c.publisher
	}
	return commands.NewPostCommit(invalidator, events)
}

func (c *CompositionRoot) projectionCache() ports.ProjectionCache {
	if c.cache == nil {
		return nil
	}
	return c.cache
}

func (c *CompositionRoot) CreateCreateRouteCommandHandler() commands.CreateRouteCommandHandler {
	return commands.NewCreateRouteCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateUpdateRouteCommandHandler() commands.UpdateRouteCommandHandler {
	return commands.NewUpdateRouteCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateDeleteRouteCommandHandler() commands.DeleteRouteCommandHandler {
	return commands.NewDeleteRouteCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateStartRouteCommandHandler() commands.StartRouteCommandHandler {
	return commands.NewStartRouteCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateFinishRouteCommandHandler() commands.FinishRouteCommandHandler {
	return commands.NewFinishRouteCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateCancelRouteCommandHandler() commands.CancelRouteCommandHandler {
	return commands.NewCancelRouteCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateMarkStopEnRouteCommandHandler() commands.MarkStopEnRouteCommandHandler {
	return commands.NewMarkStopEnRouteCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateCompleteStopCommandHandler() commands.CompleteStopCommandHandler {
	return commands.NewCompleteStopCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateCreateRouteIncidentCommandHandler() commands.CreateRouteIncidentCommandHandler {
	return commands.NewCreateRouteIncidentCommandHandler(c.uow(), c.clock, c.postCommit())
}

func (c *CompositionRoot) CreateSyncVehicleMaintenanceCommandHandler() commands.SyncVehicleMaintenanceCommandHandler {
	var f commands.VehicleUoWFactory = FuncVehicleUoWFactory(func() commands.VehicleUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSyncVehicleMaintenanceCommandHandler(f)
}

func (c *CompositionRoot) CreateGetRouteQueryHandler() queries.GetRouteQueryHandler {
	return queries.NewGetRouteQueryHandler(c.gormDB, c.projectionCache(), c.config.CacheTTL)
}

func (c *CompositionRoot) CreateListRoutesQueryHandler() queries.ListRoutesQueryHandler {
	return queries.NewListRoutesQueryHandler(c.gormDB, c.projectionCache(), c.config.CacheTTL)
}

// CreateHTTPServer builds the HTTP adapter with every route use case.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	checks := map[string]httpin.HealthCheck{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := c.gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.cache != nil {
		checks["redis"] = c.cache.Ping
	}

	return httpin.NewServer(httpin.Handlers{
		CreateRoute:         c.CreateCreateRouteCommandHandler(),
		UpdateRoute:         c.CreateUpdateRouteCommandHandler(),
		DeleteRoute:         c.CreateDeleteRouteCommandHandler(),
		StartRoute:          c.CreateStartRouteCommandHandler(),
		FinishRoute:         c.CreateFinishRouteCommandHandler(),
		CancelRoute:         c.CreateCancelRouteCommandHandler(),
		MarkStopEnRoute:     c.CreateMarkStopEnRouteCommandHandler(),
		CompleteStop:        c.CreateCompleteStopCommandHandler(),
		CreateRouteIncident: c.CreateCreateRouteIncidentCommandHandler(),
		GetRoute:            c.CreateGetRouteQueryHandler(),
		ListRoutes:          c.CreateListRoutesQueryHandler(),
	}, checks, c.logger)
}

// CreateJobManager builds the background jobs. Without a cache there is
// nothing to retry and only the maintenance sync runs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	if c.cache == nil {
		return jobs.NewJobManager(c.CreateSyncVehicleMaintenanceCommandHandler(), nil, c.config.Schedules(), c.logger)
	}
	return jobs.NewJobManager(c.CreateSyncVehicleMaintenanceCommandHandler(), c.cache, c.config.Schedules(), c.logger)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncVehicleUoWFactory func() commands.VehicleUoW

func (f FuncVehicleUoWFactory) Create() commands.VehicleUoW {
	return f()
}
