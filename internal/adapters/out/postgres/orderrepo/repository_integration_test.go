package orderrepo_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"fleet/internal/adapters/out/postgres/orderrepo"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/order"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for OrderRepository
// using PostgreSQL containers to verify database persistence behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)

	suite.assertOrderCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_UnconstructedOrder_Fails() {
	err := suite.repository.Add(context.Background(), &order.Order{})

	suite.Require().ErrorIs(err, order.ErrOrderIsNotConstructed)
	suite.assertOrderCount(0)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_ExistingOrder_ReturnsOrder() {
	ctx := context.Background()
	id := kernel.NewUUID()
	original, err := order.NewOrder(id, "ACME", "Depot", "Main St 1", 120.5, 0.8)
	suite.Require().NoError(err)
	desired := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)
	original.SetDesiredDate(&desired)
	suite.tracker.On("TrackAggregate", id, original).Once()
	suite.Require().NoError(suite.repository.Add(ctx, original))

	retrieved, err := suite.repository.Get(ctx, id)
	suite.Require().NoError(err)

	suite.Equal(id, retrieved.ID())
	suite.Equal("ACME", retrieved.CustomerName())
	suite.Equal("Depot", retrieved.PickupAddress())
	suite.Equal("Main St 1", retrieved.DropoffAddress())
	suite.InDelta(120.5, retrieved.Weight(), 1e-9)
	suite.InDelta(0.8, retrieved.Volume(), 1e-9)
	suite.Equal(order.Pending, retrieved.Status())
	suite.Require().NotNil(retrieved.DesiredDate())
	suite.Equal("2025-03-14", retrieved.DesiredDate().Format(time.DateOnly))
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	retrieved, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Nil(retrieved)
	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_OrderStatusTransitions() {
	testCases := []struct {
		name   string
		apply  func(*order.Order) error
		status order.Status
	}{
		{
			name:   "pending to en route",
			apply:  (*order.Order).AssignToRoute,
			status: order.EnRoute,
		},
		{
			name: "en route to delivered",
			apply: func(o *order.Order) error {
				if err := o.AssignToRoute(); err != nil {
					return err
				}
				return o.Deliver()
			},
			status: order.Delivered,
		},
		{
			name: "released back to pending",
			apply: func(o *order.Order) error {
				if err := o.AssignToRoute(); err != nil {
					return err
				}
				o.Release()
				return nil
			},
			status: order.Pending,
		},
	}

	ctx := context.Background()
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			o := suite.createTestOrder()
			suite.tracker.On("TrackAggregate", o.ID(), o)
			suite.Require().NoError(suite.repository.Add(ctx, o))

			suite.Require().NoError(tc.apply(o))
			suite.Require().NoError(suite.repository.Update(ctx, o))

			retrieved, err := suite.repository.Get(ctx, o.ID())
			suite.Require().NoError(err)
			suite.Equal(tc.status, retrieved.Status())
		})
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFound() {
	err := suite.repository.Update(context.Background(), suite.createTestOrder())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetMany_KeepsRequestedOrder() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(3)

	first, second, third := suite.addOrder(ctx), suite.addOrder(ctx), suite.addOrder(ctx)

	orders, err := suite.repository.GetMany(ctx, []kernel.UUID{third.ID(), first.ID(), second.ID()})
	suite.Require().NoError(err)

	suite.Require().Len(orders, 3)
	suite.Equal(third.ID(), orders[0].ID())
	suite.Equal(first.ID(), orders[1].ID())
	suite.Equal(second.ID(), orders[2].ID())
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetMany_MissingOrder_ReturnsNotFound() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Once()
	existing := suite.addOrder(ctx)
	missing := kernel.NewUUID()

	orders, err := suite.repository.GetMany(ctx, []kernel.UUID{existing.ID(), missing})

	suite.Nil(orders)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.Contains(err.Error(), missing.String())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetMany_Empty_ReturnsEmptySlice() {
	orders, err := suite.repository.GetMany(context.Background(), nil)

	suite.Require().NoError(err)
	suite.Empty(orders)
}

// TestOrderRepository_ErrorScenarios verifies error handling for various failure cases.
func (suite *OrderRepositoryIntegrationTestSuite) TestOrderRepository_ErrorScenarios() {
	testCases := []struct {
		name      string
		operation func() error
		expected  string
	}{
		{
			name: "get with invalid UUID",
			operation: func() error {
				_, err := suite.repository.Get(context.Background(), kernel.UUID{})
				return err
			},
			expected: "required",
		},
		{
			name: "get many with invalid UUID",
			operation: func() error {
				_, err := suite.repository.GetMany(context.Background(), []kernel.UUID{{}})
				return err
			},
			expected: "required",
		},
		{
			name: "get non-existent order",
			operation: func() error {
				_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
				return err
			},
			expected: "not found",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			err := tc.operation()
			suite.Require().Error(err)
			suite.Contains(strings.ToLower(err.Error()), strings.ToLower(tc.expected))
		})
	}
}

// TestOrderRepository_Concurrency verifies repository behavior under concurrent access.
func (suite *OrderRepositoryIntegrationTestSuite) TestOrderRepository_Concurrency() {
	ctx := context.Background()
	initialOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", initialOrder.ID(), initialOrder).Once()
	suite.Require().NoError(suite.repository.Add(ctx, initialOrder))

	results := make(chan *order.Order, 3)
	errors := make(chan error, 3)

	for range 3 {
		go func() {
			retrievedOrder, readErr := suite.repository.Get(ctx, initialOrder.ID())
			if readErr != nil {
				errors <- readErr
			} else {
				results <- retrievedOrder
			}
		}()
	}

	for range 3 {
		select {
		case result := <-results:
			suite.Equal(initialOrder.ID(), result.ID())
		case readErr := <-errors:
			suite.Failf("Unexpected error in concurrent read", "%v", readErr)
		}
	}

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder() *order.Order {
	testOrder, err := order.NewOrder(kernel.NewUUID(), "ACME", "Depot", "Main St 1", 50, 0.5)
	suite.Require().NoError(err)
	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) addOrder(ctx context.Context) *order.Order {
	o := suite.createTestOrder()
	suite.Require().NoError(suite.repository.Add(ctx, o))
	return o
}

// assertOrderCount verifies the number of orders in the database.
func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	err := suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
