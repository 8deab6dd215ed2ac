package commands

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrCreateRouteCommandIsNotConstructed = errors.New(
	"CreateRouteCommand must be created via NewCreateRouteCommand constructor",
)

// RouteOrder is an order requested on a route, with optional planned times used
// when the stop plan is generated.
type RouteOrder struct {
	OrderID   kernel.UUID
	PickupAt  *time.Time
	DropoffAt *time.Time
}

// CreateRouteCommand books a vehicle and a driver for a window and attaches orders.
// When plan is empty the default pickup-then-dropoff plan is generated.
//
// Example:
//
//	cmd, err := NewCreateRouteCommand(window, vehicleID, driverID,
//	    []RouteOrder{{OrderID: o1}, {OrderID: o2}}, nil, "fragile load")
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
//	routeID := cmd.RouteID()
type CreateRouteCommand struct {
	routeID   kernel.UUID
	window    kernel.TimeWindow
	vehicleID kernel.UUID
	driverID  kernel.UUID
	orders    []RouteOrder
	plan      []route.PlannedStop
	notes     string
	guard     guard.ConstructorGuard
}

// NewCreateRouteCommand validates the request shape. Feasibility is checked by
// the handler.
func NewCreateRouteCommand(
	window kernel.TimeWindow,
	vehicleID kernel.UUID,
	driverID kernel.UUID,
	orders []RouteOrder,
	plan []route.PlannedStop,
	notes string,
) (CreateRouteCommand, error) {
	if err := errors.Join(
		window.Validate(),
		vehicleID.Validate(),
		driverID.Validate(),
		validateRouteOrders(orders),
	); err != nil {
		return CreateRouteCommand{}, err
	}

	return CreateRouteCommand{
		routeID:   kernel.NewUUID(),
		window:    window,
		vehicleID: vehicleID,
		driverID:  driverID,
		orders:    slices.Clone(orders),
		plan:      slices.Clone(plan),
		notes:     strings.TrimSpace(notes),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// RouteID is the identifier the route is created with.
func (c CreateRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c CreateRouteCommand) Window() kernel.TimeWindow {
	return c.window
}

func (c CreateRouteCommand) VehicleID() kernel.UUID {
	return c.vehicleID
}

func (c CreateRouteCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c CreateRouteCommand) Orders() []RouteOrder {
	return slices.Clone(c.orders)
}

func (c CreateRouteCommand) Plan() []route.PlannedStop {
	return slices.Clone(c.plan)
}

func (c CreateRouteCommand) Notes() string {
	return c.notes
}

// Validate ensures the command was created through the constructor.
func (c CreateRouteCommand) Validate() error {
	return c.guard.Validate(ErrCreateRouteCommandIsNotConstructed)
}

func validateRouteOrders(orders []RouteOrder) error {
	if len(orders) == 0 {
		return errs.NewValueIsRequiredError("orders")
	}

	seen := make(map[kernel.UUID]struct{}, len(orders))
	for _, o := range orders {
		if err := o.OrderID.Validate(); err != nil {
			return err
		}
		if _, ok := seen[o.OrderID]; ok {
			return errs.NewValueIsInvalidErrorWithCause("orders", fmt.Errorf("order %s is listed twice", o.OrderID))
		}
		seen[o.OrderID] = struct{}{}
	}
	return nil
}
