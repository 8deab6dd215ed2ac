package commands

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/order"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/core/domain/services"
	"fleet/internal/pkg/errs"
)

// resourceCheck describes the booking a route wants to hold.
type resourceCheck struct {
	window    kernel.TimeWindow
	vehicleID kernel.UUID
	driverID  kernel.UUID

	// excludeRouteID is the route being edited, nil on creation
	excludeRouteID *kernel.UUID
}

// checkResources loads and locks the vehicle and the driver and runs the
// availability rules. The loaded vehicle is returned for the capacity check.
func checkResources(ctx context.Context, uow UoW, today time.Time, check resourceCheck) (*vehicle.Vehicle, error) {
	validator := services.NewAvailabilityValidator()
	vehicleRepo := uow.VehicleRepository()
	routeRepo := uow.RouteRepository()

	v, err := vehicleRepo.Get(ctx, check.vehicleID)
	if err != nil {
		return nil, err
	}
	inMaintenance, err := vehicleRepo.MaintenanceInProgress(ctx, check.vehicleID)
	if err != nil {
		return nil, err
	}
	vehicleBookings, err := routeRepo.BookingsForVehicle(ctx, check.vehicleID, check.window)
	if err != nil {
		return nil, err
	}
	if err = validator.ValidateVehicle(v, inMaintenance, check.window, vehicleBookings, check.excludeRouteID); err != nil {
		return nil, err
	}

	d, err := uow.DriverRepository().Get(ctx, check.driverID)
	if err != nil {
		return nil, err
	}
	driverBookings, err := routeRepo.BookingsForDriver(ctx, check.driverID, check.window)
	if err != nil {
		return nil, err
	}
	if err = validator.ValidateDriver(d, today, check.window, driverBookings, check.excludeRouteID); err != nil {
		return nil, err
	}

	return v, nil
}

// checkAssignable rejects orders that are finished or already travel with another
// active route.
func checkAssignable(ctx context.Context, uow UoW, orders []*order.Order, excludeRouteID *kernel.UUID) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		if err := o.ValidateAssignable(); err != nil {
			return err
		}
		ids = append(ids, o.ID())
	}

	assigned, err := uow.RouteRepository().ActiveRoutesByOrders(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		routeID, ok := assigned[id]
		if !ok {
			continue
		}
		if excludeRouteID != nil && routeID.IsEqual(*excludeRouteID) {
			continue
		}
		return errs.NewDuplicateAssignmentError(id, routeID)
	}
	return nil
}

// checkPlan runs the sequencing rules, then the load simulation.
func checkPlan(plan []route.PlannedStop, window kernel.TimeWindow, orders []*order.Order, v *vehicle.Vehicle) error {
	ids := make([]kernel.UUID, 0, len(orders))
	weights := make(map[kernel.UUID]float64, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
		weights[o.ID()] = o.Weight()
	}

	if err := services.NewSequencingValidator().Validate(plan, window.End(), ids); err != nil {
		return err
	}
	return services.NewCapacitySimulator().Simulate(v.Capacity(), plan, weights)
}

// defaultPlan builds the pickup-then-dropoff plan for the requested orders.
func defaultPlan(requested []RouteOrder, orders []*order.Order) []route.PlannedStop {
	byID := make(map[kernel.UUID]*order.Order, len(orders))
	for _, o := range orders {
		byID[o.ID()] = o
	}

	planOrders := make([]route.PlanOrder, 0, len(requested))
	for _, r := range requested {
		o := byID[r.OrderID]
		planOrders = append(planOrders, route.PlanOrder{
			OrderID:        r.OrderID,
			PickupAddress:  o.PickupAddress(),
			DropoffAddress: o.DropoffAddress(),
			PickupAt:       r.PickupAt,
			DropoffAt:      r.DropoffAt,
		})
	}
	return route.DefaultPlan(planOrders)
}

func orderIDsOf(requested []RouteOrder) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(requested))
	for _, r := range requested {
		ids = append(ids, r.OrderID)
	}
	return ids
}

// releaseOrders puts every non-terminal order of a route back to Pending.
func releaseOrders(ctx context.Context, uow UoW, orderIDs []kernel.UUID) error {
	if len(orderIDs) == 0 {
		return nil
	}

	orderRepo := uow.OrderRepository()
	orders, err := orderRepo.GetMany(ctx, orderIDs)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if !o.Release() {
			continue
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
