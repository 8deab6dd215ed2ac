package queries_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	postgres_adapter "fleet/internal/adapters/out/postgres"
	"fleet/internal/adapters/out/postgres/routerepo"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

type RouteQueryHandlersTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	routes    *routerepo.GormRouteRepository
	cache     *memoryCache
	day       time.Time
}

func (suite *RouteQueryHandlersTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.routes = routerepo.NewGormRouteRepository(db, &mockAggregateTracker{})
	suite.day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

func (suite *RouteQueryHandlersTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RouteQueryHandlersTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE route_stops, routes").Error)
	suite.cache = &memoryCache{entries: map[string][]byte{}}
}

func (suite *RouteQueryHandlersTestSuite) TestGetRoute_ReturnsStopsInSequence() {
	ctx := context.Background()
	orderA, orderB := kernel.NewUUID(), kernel.NewUUID()
	r := suite.addRoute(suite.day, kernel.NewUUID(), kernel.NewUUID(), orderA, orderB)
	handler := queries.NewGetRouteQueryHandler(suite.db, suite.cache, time.Minute)

	query, err := queries.NewGetRouteQuery(r.ID())
	suite.Require().NoError(err)
	view, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Equal(r.ID(), view.ID)
	suite.Equal("Planned", view.Status)
	suite.Equal(1, view.Version)
	suite.True(r.Window().Start().Equal(view.WindowStart))
	suite.Require().Len(view.Stops, 4)
	for i, stop := range view.Stops {
		suite.Equal(i+1, stop.Sequence)
		suite.Equal("Pending", stop.Status)
	}
	suite.Equal("Pickup", view.Stops[0].Operation)
	suite.Equal(orderA, view.Stops[0].OrderID)
	suite.Equal("Dropoff", view.Stops[3].Operation)
	suite.Equal(orderB, view.Stops[3].OrderID)
	suite.Contains(suite.cache.entries, ports.RouteItemKey(r.ID()))
}

func (suite *RouteQueryHandlersTestSuite) TestGetRoute_ListsDropoffsFirstInsideSharedPosition() {
	ctx := context.Background()
	orderA, orderB := kernel.NewUUID(), kernel.NewUUID()
	window, err := kernel.NewTimeWindow(suite.day.Add(9*time.Hour), suite.day.Add(12*time.Hour))
	suite.Require().NoError(err)
	r, err := route.NewRoute(kernel.NewUUID(), window, kernel.NewUUID(), kernel.NewUUID(), "", []route.PlannedStop{
		{OrderID: orderA, Operation: route.Pickup, Sequence: 1, Address: "Depot"},
		{OrderID: orderB, Operation: route.Pickup, Sequence: 2, Address: "Market"},
		{OrderID: orderA, Operation: route.Dropoff, Sequence: 2, Address: "Market"},
		{OrderID: orderB, Operation: route.Dropoff, Sequence: 3, Address: "Customer"},
	}, suite.day)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.routes.Add(ctx, r))

	query, err := queries.NewGetRouteQuery(r.ID())
	suite.Require().NoError(err)
	view, err := queries.NewGetRouteQueryHandler(suite.db, nil, time.Minute).Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Require().Len(view.Stops, 4)
	suite.Equal([]string{"Pickup", "Dropoff", "Pickup", "Dropoff"}, []string{
		view.Stops[0].Operation, view.Stops[1].Operation, view.Stops[2].Operation, view.Stops[3].Operation,
	})
	suite.Equal(orderA, view.Stops[1].OrderID)
}

func (suite *RouteQueryHandlersTestSuite) TestGetRoute_ServesCachedProjection() {
	ctx := context.Background()
	r := suite.addRoute(suite.day, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID())
	handler := queries.NewGetRouteQueryHandler(suite.db, suite.cache, time.Minute)
	query, err := queries.NewGetRouteQuery(r.ID())
	suite.Require().NoError(err)

	_, err = handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.Exec("DELETE FROM routes").Error)

	cached, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal(r.ID(), cached.ID)

	delete(suite.cache.entries, ports.RouteItemKey(r.ID()))
	_, err = handler.Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *RouteQueryHandlersTestSuite) TestGetRoute_NotFound() {
	handler := queries.NewGetRouteQueryHandler(suite.db, nil, time.Minute)
	query, err := queries.NewGetRouteQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = handler.Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *RouteQueryHandlersTestSuite) TestListRoutes_FiltersAndPages() {
	ctx := context.Background()
	driverID := kernel.NewUUID()
	vehicleID := kernel.NewUUID()
	first := suite.addRoute(suite.day, vehicleID, driverID, kernel.NewUUID())
	second := suite.addRoute(suite.day.Add(4*time.Hour), kernel.NewUUID(), driverID, kernel.NewUUID(), kernel.NewUUID())
	nextDay := suite.addRoute(suite.day.AddDate(0, 0, 1), vehicleID, kernel.NewUUID(), kernel.NewUUID())
	handler := queries.NewListRoutesQueryHandler(suite.db, nil, time.Minute)

	testCases := []struct {
		name     string
		filter   func() queries.RouteFilter
		expected []kernel.UUID
		total    int64
	}{
		{
			name:     "all routes ordered by window",
			filter:   func() queries.RouteFilter { return queries.RouteFilter{} },
			expected: []kernel.UUID{first.ID(), second.ID(), nextDay.ID()},
			total:    3,
		},
		{
			name: "by date",
			filter: func() queries.RouteFilter {
				day := suite.day.Add(15 * time.Hour)
				return queries.RouteFilter{Date: &day}
			},
			expected: []kernel.UUID{first.ID(), second.ID()},
			total:    2,
		},
		{
			name:     "by driver",
			filter:   func() queries.RouteFilter { return queries.RouteFilter{DriverID: &driverID} },
			expected: []kernel.UUID{first.ID(), second.ID()},
			total:    2,
		},
		{
			name:     "by vehicle",
			filter:   func() queries.RouteFilter { return queries.RouteFilter{VehicleID: &vehicleID} },
			expected: []kernel.UUID{first.ID(), nextDay.ID()},
			total:    2,
		},
		{
			name: "by status",
			filter: func() queries.RouteFilter {
				status := route.Cancelled
				return queries.RouteFilter{Status: &status}
			},
			expected: []kernel.UUID{},
			total:    0,
		},
		{
			name:     "second page",
			filter:   func() queries.RouteFilter { return queries.RouteFilter{Offset: 1, Limit: 1} },
			expected: []kernel.UUID{second.ID()},
			total:    3,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			query, err := queries.NewListRoutesQuery(tc.filter())
			suite.Require().NoError(err)

			page, err := handler.Handle(ctx, query)
			suite.Require().NoError(err)

			ids := make([]kernel.UUID, 0, len(page.Items))
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			suite.Equal(tc.expected, ids)
			suite.Equal(tc.total, page.Total)
		})
	}
}

func (suite *RouteQueryHandlersTestSuite) TestListRoutes_CountsStops() {
	ctx := context.Background()
	r := suite.addRoute(suite.day, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID())
	handler := queries.NewListRoutesQueryHandler(suite.db, suite.cache, time.Minute)

	query, err := queries.NewListRoutesQuery(queries.RouteFilter{})
	suite.Require().NoError(err)
	page, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Require().Len(page.Items, 1)
	suite.Equal(r.ID(), page.Items[0].ID)
	suite.Equal(4, page.Items[0].StopCount)
	suite.Equal(4, page.Items[0].PendingStops)
	suite.Equal(queries.DefaultListLimit, page.Limit)
	suite.Contains(suite.cache.entries, query.CacheKey())
}

// addRoute stores a Planned route from 09:00 to 12:00 of day with the default plan.
func (suite *RouteQueryHandlersTestSuite) addRoute(
	day time.Time,
	vehicleID, driverID kernel.UUID,
	orderIDs ...kernel.UUID,
) *route.Route {
	window, err := kernel.NewTimeWindow(day.Add(9*time.Hour), day.Add(12*time.Hour))
	suite.Require().NoError(err)

	planOrders := make([]route.PlanOrder, 0, len(orderIDs))
	for i, id := range orderIDs {
		planOrders = append(planOrders, route.PlanOrder{
			OrderID:        id,
			PickupAddress:  fmt.Sprintf("Depot %d", i+1),
			DropoffAddress: fmt.Sprintf("Customer %d", i+1),
		})
	}
	r, err := route.NewRoute(kernel.NewUUID(), window, vehicleID, driverID, "", route.DefaultPlan(planOrders), day)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.routes.Add(context.Background(), r))
	return r
}

func TestRouteQueryHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(RouteQueryHandlersTestSuite))
}
