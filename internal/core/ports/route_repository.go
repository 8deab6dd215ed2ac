package ports

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
)

// RouteRepository defines the persistence contract for route aggregates and their stops.
type RouteRepository interface {
	// Add persists a new route with its stops.
	Add(ctx context.Context, aggregate *route.Route) error

	// Update persists the route and replaces its stops. The write succeeds only when
	// the stored version still equals aggregate.Version(); otherwise it returns
	// *errs.StateConflictError. The stored version is incremented.
	Update(ctx context.Context, aggregate *route.Route) error

	// Delete removes the route and its stops.
	Delete(ctx context.Context, id kernel.UUID) error

	// Get loads a route and locks its row until the transaction ends.
	// Returns *errs.ObjectNotFoundError when the route does not exist.
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// BookingsForVehicle returns the non-cancelled routes of the vehicle whose window
	// intersects window.
	BookingsForVehicle(ctx context.Context, vehicleID kernel.UUID, window kernel.TimeWindow) ([]route.Booking, error)

	// BookingsForDriver returns the non-cancelled routes of the driver whose window
	// intersects window.
	BookingsForDriver(ctx context.Context, driverID kernel.UUID, window kernel.TimeWindow) ([]route.Booking, error)

	// ActiveRoutesByOrders maps each given order that has a stop on a Planned or
	// InProgress route to that route. Orders without such a route are absent.
	//
	// Example:
	//   assigned, err := repo.ActiveRoutesByOrders(ctx, orderIDs)
	//   if routeID, ok := assigned[orderID]; ok && !routeID.IsEqual(current) {
	//       return errs.NewDuplicateAssignmentError(orderID, routeID)
	//   }
	ActiveRoutesByOrders(ctx context.Context, orderIDs []kernel.UUID) (map[kernel.UUID]kernel.UUID, error)
}
