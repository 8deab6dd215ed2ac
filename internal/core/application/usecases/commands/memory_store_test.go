package commands_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/driver"
	"fleet/internal/core/domain/model/incident"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/order"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

var errNoTransaction = errors.New("no active transaction")

// memoryState is a transactional in-memory database. Aggregates are copied on the
// way in and out so handlers only see what they explicitly stored.
type memoryState struct {
	routes      map[kernel.UUID]*route.Route
	orders      map[kernel.UUID]*order.Order
	vehicles    map[kernel.UUID]*vehicle.Vehicle
	maintenance map[kernel.UUID]bool
	drivers     map[kernel.UUID]*driver.Driver
	incidents   []*incident.Incident
}

func newMemoryState() *memoryState {
	return &memoryState{
		routes:      map[kernel.UUID]*route.Route{},
		orders:      map[kernel.UUID]*order.Order{},
		vehicles:    map[kernel.UUID]*vehicle.Vehicle{},
		maintenance: map[kernel.UUID]bool{},
		drivers:     map[kernel.UUID]*driver.Driver{},
	}
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		routes:      maps.Clone(s.routes),
		orders:      maps.Clone(s.orders),
		vehicles:    maps.Clone(s.vehicles),
		maintenance: maps.Clone(s.maintenance),
		drivers:     maps.Clone(s.drivers),
		incidents:   slices.Clone(s.incidents),
	}
}

type memoryDB struct {
	mu        sync.Mutex
	committed *memoryState
}

func newMemoryDB() *memoryDB {
	return &memoryDB{committed: newMemoryState()}
}

func (db *memoryDB) Create() commands.UoW {
	return &memoryUoW{db: db}
}

type memoryVehicleUoWFactory struct{ db *memoryDB }

func (f memoryVehicleUoWFactory) Create() commands.VehicleUoW {
	return &memoryUoW{db: f.db}
}

// Seeding and inspection helpers work on committed state.

func (db *memoryDB) putRoute(t *testing.T, r *route.Route) {
	t.Helper()
	db.committed.routes[r.ID()] = cloneRoute(t, r, r.Version())
}

func (db *memoryDB) putOrder(t *testing.T, o *order.Order) {
	t.Helper()
	db.committed.orders[o.ID()] = cloneOrder(t, o)
}

func (db *memoryDB) putVehicle(t *testing.T, v *vehicle.Vehicle, inMaintenance bool) {
	t.Helper()
	db.committed.vehicles[v.ID()] = cloneVehicle(t, v)
	db.committed.maintenance[v.ID()] = inMaintenance
}

func (db *memoryDB) putDriver(t *testing.T, d *driver.Driver) {
	t.Helper()
	db.committed.drivers[d.ID()] = d
}

func (db *memoryDB) route(id kernel.UUID) (*route.Route, bool) {
	r, ok := db.committed.routes[id]
	return r, ok
}

func (db *memoryDB) order(id kernel.UUID) *order.Order {
	return db.committed.orders[id]
}

func (db *memoryDB) vehicle(id kernel.UUID) *vehicle.Vehicle {
	return db.committed.vehicles[id]
}

func (db *memoryDB) incidents() []*incident.Incident {
	return db.committed.incidents
}

type memoryUoW struct {
	db *memoryDB
	tx *memoryState
}

func (u *memoryUoW) Begin(_ context.Context) error {
	if u.tx != nil {
		return nil
	}
	u.db.mu.Lock()
	u.tx = u.db.committed.clone()
	return nil
}

func (u *memoryUoW) Commit(_ context.Context) error {
	if u.tx == nil {
		return errNoTransaction
	}
	u.db.committed = u.tx
	u.tx = nil
	u.db.mu.Unlock()
	return nil
}

func (u *memoryUoW) Rollback(_ context.Context) error {
	if u.tx == nil {
		return errNoTransaction
	}
	u.tx = nil
	u.db.mu.Unlock()
	return nil
}

func (u *memoryUoW) state() *memoryState {
	if u.tx != nil {
		return u.tx
	}
	return u.db.committed
}

func (u *memoryUoW) RouteRepository() ports.RouteRepository       { return memoryRoutes{u} }
func (u *memoryUoW) OrderRepository() ports.OrderRepository       { return memoryOrders{u} }
func (u *memoryUoW) VehicleRepository() ports.VehicleRepository   { return memoryVehicles{u} }
func (u *memoryUoW) DriverRepository() ports.DriverRepository     { return memoryDrivers{u} }
func (u *memoryUoW) IncidentRepository() ports.IncidentRepository { return memoryIncidents{u} }

type memoryRoutes struct{ u *memoryUoW }

func (m memoryRoutes) Add(_ context.Context, r *route.Route) error {
	m.u.state().routes[r.ID()] = mustCloneRoute(r, r.Version())
	return nil
}

func (m memoryRoutes) Update(_ context.Context, r *route.Route) error {
	stored, ok := m.u.state().routes[r.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("route", r.ID())
	}
	if stored.Version() != r.Version() {
		return errs.NewStateConflictError("route", r.ID(), "route was modified concurrently")
	}
	m.u.state().routes[r.ID()] = mustCloneRoute(r, r.Version()+1)
	return nil
}

func (m memoryRoutes) Delete(_ context.Context, id kernel.UUID) error {
	delete(m.u.state().routes, id)
	return nil
}

func (m memoryRoutes) Get(_ context.Context, id kernel.UUID) (*route.Route, error) {
	r, ok := m.u.state().routes[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("route", id)
	}
	return mustCloneRoute(r, r.Version()), nil
}

func (m memoryRoutes) BookingsForVehicle(_ context.Context, vehicleID kernel.UUID, window kernel.TimeWindow) ([]route.Booking, error) {
	return m.bookings(window, func(r *route.Route) bool { return r.VehicleID().IsEqual(vehicleID) }), nil
}

func (m memoryRoutes) BookingsForDriver(_ context.Context, driverID kernel.UUID, window kernel.TimeWindow) ([]route.Booking, error) {
	return m.bookings(window, func(r *route.Route) bool { return r.DriverID().IsEqual(driverID) }), nil
}

func (m memoryRoutes) bookings(window kernel.TimeWindow, match func(*route.Route) bool) []route.Booking {
	var bookings []route.Booking
	for _, r := range m.u.state().routes {
		if match(r) && r.Status() != route.Cancelled && r.Window().Overlaps(window) {
			bookings = append(bookings, route.BookingOf(r))
		}
	}
	return bookings
}

func (m memoryRoutes) ActiveRoutesByOrders(_ context.Context, orderIDs []kernel.UUID) (map[kernel.UUID]kernel.UUID, error) {
	assigned := map[kernel.UUID]kernel.UUID{}
	for _, r := range m.u.state().routes {
		if !r.Status().IsActive() {
			continue
		}
		for _, id := range r.OrderIDs() {
			if slices.Contains(orderIDs, id) {
				assigned[id] = r.ID()
			}
		}
	}
	return assigned, nil
}

type memoryOrders struct{ u *memoryUoW }

func (m memoryOrders) Add(_ context.Context, o *order.Order) error {
	m.u.state().orders[o.ID()] = mustCloneOrder(o)
	return nil
}

func (m memoryOrders) Update(_ context.Context, o *order.Order) error {
	if _, ok := m.u.state().orders[o.ID()]; !ok {
		return errs.NewObjectNotFoundError("order", o.ID())
	}
	m.u.state().orders[o.ID()] = mustCloneOrder(o)
	return nil
}

func (m memoryOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	o, ok := m.u.state().orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return mustCloneOrder(o), nil
}

func (m memoryOrders) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		o, err := m.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

type memoryVehicles struct{ u *memoryUoW }

func (m memoryVehicles) Add(_ context.Context, v *vehicle.Vehicle) error {
	m.u.state().vehicles[v.ID()] = mustCloneVehicle(v)
	return nil
}

func (m memoryVehicles) Update(ctx context.Context, v *vehicle.Vehicle) error {
	return m.Add(ctx, v)
}

func (m memoryVehicles) Get(_ context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	v, ok := m.u.state().vehicles[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("vehicle", id)
	}
	return mustCloneVehicle(v), nil
}

func (m memoryVehicles) GetAll(_ context.Context) ([]*vehicle.Vehicle, error) {
	all := make([]*vehicle.Vehicle, 0, len(m.u.state().vehicles))
	for _, v := range m.u.state().vehicles {
		all = append(all, mustCloneVehicle(v))
	}
	return all, nil
}

func (m memoryVehicles) MaintenanceInProgress(_ context.Context, vehicleID kernel.UUID) (bool, error) {
	return m.u.state().maintenance[vehicleID], nil
}

func (m memoryVehicles) VehiclesInMaintenance(_ context.Context) (map[kernel.UUID]struct{}, error) {
	busy := map[kernel.UUID]struct{}{}
	for id, inProgress := range m.u.state().maintenance {
		if inProgress {
			busy[id] = struct{}{}
		}
	}
	return busy, nil
}

type memoryDrivers struct{ u *memoryUoW }

func (m memoryDrivers) Add(_ context.Context, d *driver.Driver) error {
	m.u.state().drivers[d.ID()] = d
	return nil
}

func (m memoryDrivers) Get(_ context.Context, id kernel.UUID) (*driver.Driver, error) {
	d, ok := m.u.state().drivers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("driver", id)
	}
	return d, nil
}

type memoryIncidents struct{ u *memoryUoW }

func (m memoryIncidents) Add(_ context.Context, inc *incident.Incident) error {
	m.u.state().incidents = append(m.u.state().incidents, inc)
	return nil
}

func cloneRoute(t *testing.T, r *route.Route, version int) *route.Route {
	t.Helper()
	c, err := restoreCopy(r, version)
	require.NoError(t, err)
	return c
}

func mustCloneRoute(r *route.Route, version int) *route.Route {
	c, err := restoreCopy(r, version)
	if err != nil {
		panic(err)
	}
	return c
}

func restoreCopy(r *route.Route, version int) (*route.Route, error) {
	stops := make([]*route.Stop, 0, len(r.Stops()))
	for _, s := range r.Stops() {
		c, err := route.RestoreStop(s.ID(), s.Planned(), s.Status(), s.CompletedAt(), s.ProofRefs())
		if err != nil {
			return nil, err
		}
		stops = append(stops, c)
	}
	return route.RestoreRoute(r.ID(), r.Window(), r.VehicleID(), r.DriverID(), r.Notes(), r.Status(), stops,
		r.StartedAt(), r.FinishedAt(), version)
}

func cloneOrder(t *testing.T, o *order.Order) *order.Order {
	t.Helper()
	c, err := order.RestoreOrder(o.ID(), o.CustomerName(), o.PickupAddress(), o.DropoffAddress(), o.Weight(), o.Volume(), o.Status())
	require.NoError(t, err)
	return c
}

func mustCloneOrder(o *order.Order) *order.Order {
	c, err := order.RestoreOrder(o.ID(), o.CustomerName(), o.PickupAddress(), o.DropoffAddress(), o.Weight(), o.Volume(), o.Status())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneVehicle(t *testing.T, v *vehicle.Vehicle) *vehicle.Vehicle {
	t.Helper()
	c, err := vehicle.RestoreVehicle(v.ID(), v.Name(), v.Plate(), v.Capacity(), v.Status())
	require.NoError(t, err)
	return c
}

func mustCloneVehicle(v *vehicle.Vehicle) *vehicle.Vehicle {
	c, err := vehicle.RestoreVehicle(v.ID(), v.Name(), v.Plate(), v.Capacity(), v.Status())
	if err != nil {
		panic(err)
	}
	return c
}

// recordingInvalidator and recordingPublisher capture post-commit effects.

type invalidation struct {
	RouteID  kernel.UUID
	OrderIDs []kernel.UUID
}

type recordingInvalidator struct {
	calls []invalidation
}

func (r *recordingInvalidator) InvalidateRoute(_ context.Context, routeID kernel.UUID, orderIDs []kernel.UUID) {
	r.calls = append(r.calls, invalidation{RouteID: routeID, OrderIDs: slices.Clone(orderIDs)})
}

type recordingPublisher struct {
	events []route.Event
}

func (r *recordingPublisher) Publish(_ context.Context, events []route.Event) {
	r.events = append(r.events, events...)
}

func (r *recordingPublisher) types() []route.EventType {
	types := make([]route.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

// fixture wires the memory database with the usual resources of a test.
type fixture struct {
	db          *memoryDB
	now         time.Time
	clock       ports.Clock
	invalidator *recordingInvalidator
	publisher   *recordingPublisher
	vehicle     *vehicle.Vehicle
	driver      *driver.Driver
}

func newFixture(t *testing.T, capacity *float64) *fixture {
	t.Helper()
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	v, err := vehicle.NewVehicle(kernel.NewUUID(), "Van 7", "7788-KLM", capacity)
	require.NoError(t, err)
	d, err := driver.NewDriver(kernel.NewUUID(), "Ana Ruiz", "B-778812", time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f := &fixture{
		db:          newMemoryDB(),
		now:         now,
		clock:       ports.ClockFunc(func() time.Time { return now }),
		invalidator: &recordingInvalidator{},
		publisher:   &recordingPublisher{},
		vehicle:     v,
		driver:      d,
	}
	f.db.putVehicle(t, v, false)
	f.db.putDriver(t, d)
	return f
}

func (f *fixture) postCommit() commands.PostCommit {
	return commands.NewPostCommit(f.invalidator, f.publisher)
}

func (f *fixture) addOrder(t *testing.T, weight float64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "ACME", "Warehouse 4", "Main St 12", weight, 0)
	require.NoError(t, err)
	f.db.putOrder(t, o)
	return o
}

func (f *fixture) addOrderWithStatus(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(kernel.NewUUID(), "ACME", "Warehouse 4", "Main St 12", 10, 0, status)
	require.NoError(t, err)
	f.db.putOrder(t, o)
	return o
}

func (f *fixture) window(t *testing.T, day, startHour, endHour int) kernel.TimeWindow {
	t.Helper()
	w, err := kernel.NewTimeWindow(
		time.Date(2025, 1, day, startHour, 0, 0, 0, time.UTC),
		time.Date(2025, 1, day, endHour, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return w
}

// addRoute stores a Planned route with the default plan of orders, moving them to EnRoute.
func (f *fixture) addRoute(t *testing.T, window kernel.TimeWindow, orders ...*order.Order) *route.Route {
	t.Helper()
	planOrders := make([]route.PlanOrder, 0, len(orders))
	for _, o := range orders {
		planOrders = append(planOrders, route.PlanOrder{OrderID: o.ID(), PickupAddress: o.PickupAddress(), DropoffAddress: o.DropoffAddress()})
		stored := f.db.order(o.ID())
		require.NoError(t, stored.AssignToRoute())
	}
	r, err := route.NewRoute(kernel.NewUUID(), window, f.vehicle.ID(), f.driver.ID(), "", route.DefaultPlan(planOrders), f.now)
	require.NoError(t, err)
	r.ClearEvents()
	f.db.putRoute(t, r)
	return r
}

// startRoute moves a stored route to InProgress.
func (f *fixture) startRoute(t *testing.T, r *route.Route) *route.Route {
	t.Helper()
	stored, ok := f.db.route(r.ID())
	require.True(t, ok)
	require.NoError(t, stored.Start(f.driver.ID(), f.now))
	stored.ClearEvents()
	return stored
}

func ptr[T any](v T) *T {
	return &v
}
