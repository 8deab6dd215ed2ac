package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "fleet/internal/adapters/out/postgres"
	"fleet/internal/adapters/out/postgres/vehiclerepo"
	"fleet/internal/core/domain/model/driver"
	"fleet/internal/core/domain/model/incident"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/order"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite runs the GORM unit of work against PostgreSQL.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   *postgres_adapter.GormUnitOfWorkFactory
	day       time.Time
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db, nil)
	suite.day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(
		"TRUNCATE TABLE incidents, route_stops, routes, orders, drivers, vehicle_maintenances, vehicles",
	).Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	for _, uow := range []ports.UnitOfWork{uow1, uow2} {
		suite.NotNil(uow.RouteRepository())
		suite.NotNil(uow.OrderRepository())
		suite.NotNil(uow.VehicleRepository())
		suite.NotNil(uow.DriverRepository())
		suite.NotNil(uow.IncidentRepository())
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_MultiRepositoryTransaction() {
	ctx := context.Background()
	uow := suite.factory.CreateGorm()

	v := suite.newVehicle()
	d := suite.newDriver()
	o := suite.newOrder()
	r := suite.newRoute(v.ID(), d.ID(), o)

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.VehicleRepository().Add(ctx, v))
	suite.Require().NoError(uow.DriverRepository().Add(ctx, d))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(o.AssignToRoute())
	suite.Require().NoError(uow.OrderRepository().Update(ctx, o))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))

	inc, err := incident.NewIncident(kernel.NewUUID(), r.ID(), nil, incident.Delay, "traffic", nil, nil, suite.day)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.IncidentRepository().Add(ctx, inc))

	suite.Equal(6, uow.TrackedCount())
	suite.Require().NoError(uow.Commit(ctx))

	reader := suite.factory.Create()
	loadedOrder, err := reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.EnRoute, loadedOrder.Status())

	loadedRoute, err := reader.RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{o.ID()}, loadedRoute.OrderIDs())

	loadedDriver, err := reader.DriverRepository().Get(ctx, d.ID())
	suite.Require().NoError(err)
	suite.Equal(d.LicenseNumber(), loadedDriver.LicenseNumber())

	assigned, err := reader.RouteRepository().ActiveRoutesByOrders(ctx, []kernel.UUID{o.ID()})
	suite.Require().NoError(err)
	suite.Equal(r.ID(), assigned[o.ID()])
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	uow := suite.factory.Create()
	v := suite.newVehicle()
	o := suite.newOrder()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.VehicleRepository().Add(ctx, v))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	_, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(uow.Rollback(ctx))

	reader := suite.factory.Create()
	_, err = reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	_, err = reader.VehicleRepository().Get(ctx, v.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()
	order1 := suite.newOrder()
	order2 := suite.newOrder()

	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))
	suite.Require().NoError(uow1.OrderRepository().Add(ctx, order1))
	suite.Require().NoError(uow2.OrderRepository().Add(ctx, order2))

	_, err := uow1.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "UOW1 should see order1")
	_, err = uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	reader := suite.factory.Create()
	_, err = reader.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "Order1 should persist after commit")
	_, err = reader.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "Order2 should not persist after rollback")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_StaleRouteVersionRollsBack() {
	ctx := context.Background()
	r := suite.newRoute(kernel.NewUUID(), kernel.NewUUID(), suite.newOrder())
	suite.Require().NoError(suite.factory.Create().RouteRepository().Add(ctx, r))

	stale, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)

	winner := suite.factory.Create()
	suite.Require().NoError(winner.Begin(ctx))
	fresh, err := winner.RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(fresh.Cancel(suite.day))
	suite.Require().NoError(winner.RouteRepository().Update(ctx, fresh))
	suite.Require().NoError(winner.Commit(ctx))

	loser := suite.factory.Create()
	suite.Require().NoError(loser.Begin(ctx))
	err = loser.RouteRepository().Update(ctx, stale)
	suite.Require().ErrorIs(err, errs.ErrStateConflict)
	suite.Require().NoError(loser.Rollback(ctx))

	reloaded, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(route.Cancelled, reloaded.Status())
	suite.Equal(2, reloaded.Version())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestVehicleRepository_Maintenance() {
	ctx := context.Background()
	uow := suite.factory.Create()
	busy, idle := suite.newVehicle(), suite.newVehicle()
	suite.Require().NoError(uow.VehicleRepository().Add(ctx, busy))
	suite.Require().NoError(uow.VehicleRepository().Add(ctx, idle))

	started := suite.day
	suite.Require().NoError(suite.db.Create(&[]vehiclerepo.MaintenanceDTO{
		{ID: uuid.New(), VehicleID: busy.ID().Bytes(), Status: vehiclerepo.MaintenanceInProgress, StartedAt: &started},
		{ID: uuid.New(), VehicleID: idle.ID().Bytes(), Status: vehiclerepo.MaintenanceDone, StartedAt: &started},
	}).Error)

	inProgress, err := uow.VehicleRepository().MaintenanceInProgress(ctx, busy.ID())
	suite.Require().NoError(err)
	suite.True(inProgress)

	inProgress, err = uow.VehicleRepository().MaintenanceInProgress(ctx, idle.ID())
	suite.Require().NoError(err)
	suite.False(inProgress)

	set, err := uow.VehicleRepository().VehiclesInMaintenance(ctx)
	suite.Require().NoError(err)
	suite.Equal(map[kernel.UUID]struct{}{busy.ID(): {}}, set)

	suite.True(busy.SyncMaintenance(true))
	suite.Require().NoError(uow.VehicleRepository().Update(ctx, busy))

	all, err := uow.VehicleRepository().GetAll(ctx)
	suite.Require().NoError(err)
	suite.Len(all, 2)
	reloaded, err := uow.VehicleRepository().Get(ctx, busy.ID())
	suite.Require().NoError(err)
	suite.Equal(vehicle.InMaintenance, reloaded.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) newVehicle() *vehicle.Vehicle {
	capacity := 1000.0
	v, err := vehicle.NewVehicle(kernel.NewUUID(), "Van", "PL-"+kernel.NewUUID().String()[:8], &capacity)
	suite.Require().NoError(err)
	return v
}

func (suite *UnitOfWorkIntegrationTestSuite) newDriver() *driver.Driver {
	d, err := driver.NewDriver(kernel.NewUUID(), "Alex Doe", "LIC-"+kernel.NewUUID().String()[:8], suite.day.AddDate(2, 0, 0))
	suite.Require().NoError(err)
	return d
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder() *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), "ACME", "Depot", "Main St 1", 100, 1)
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) newRoute(vehicleID, driverID kernel.UUID, o *order.Order) *route.Route {
	window, err := kernel.NewTimeWindow(suite.day.Add(9*time.Hour), suite.day.Add(12*time.Hour))
	suite.Require().NoError(err)
	plan := route.DefaultPlan([]route.PlanOrder{{
		OrderID:        o.ID(),
		PickupAddress:  o.PickupAddress(),
		DropoffAddress: o.DropoffAddress(),
	}})
	r, err := route.NewRoute(kernel.NewUUID(), window, vehicleID, driverID, "", plan, suite.day)
	suite.Require().NoError(err)
	return r
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
