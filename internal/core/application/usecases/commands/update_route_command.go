package commands

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrUpdateRouteCommandIsNotConstructed = errors.New(
	"UpdateRouteCommand must be created via NewUpdateRouteCommand constructor",
)

// RouteChanges lists what an update touches. Nil fields are left as they are.
//
// The stop plan changes in one of three ways:
//   - Orders set: the route carries exactly these orders; the plan is Plan when
//     given, otherwise the default plan for Orders
//   - Plan set alone: the plan is replaced for the current orders
//   - Reorder set: existing stops get new sequence numbers
//
// Reorder cannot be combined with Orders or Plan.
type RouteChanges struct {
	ExpectedVersion *int
	Window          *kernel.TimeWindow
	VehicleID       *kernel.UUID
	DriverID        *kernel.UUID
	Notes           *string
	Orders          []RouteOrder
	Plan            []route.PlannedStop
	Reorder         map[kernel.UUID]int
}

// UpdateRouteCommand edits a Planned route.
type UpdateRouteCommand struct {
	routeID kernel.UUID
	changes RouteChanges
	guard   guard.ConstructorGuard
}

func NewUpdateRouteCommand(routeID kernel.UUID, changes RouteChanges) (UpdateRouteCommand, error) {
	var windowErr, vehicleErr, driverErr, ordersErr, modeErr error
	if changes.Window != nil {
		windowErr = changes.Window.Validate()
	}
	if changes.VehicleID != nil {
		vehicleErr = changes.VehicleID.Validate()
	}
	if changes.DriverID != nil {
		driverErr = changes.DriverID.Validate()
	}
	if changes.Orders != nil {
		ordersErr = validateRouteOrders(changes.Orders)
	}
	if changes.Reorder != nil && (changes.Orders != nil || changes.Plan != nil) {
		modeErr = errs.NewValueIsInvalidErrorWithCause("reorder", fmt.Errorf("reorder cannot be combined with orders or plan"))
	}

	if err := errors.Join(routeID.Validate(), windowErr, vehicleErr, driverErr, ordersErr, modeErr); err != nil {
		return UpdateRouteCommand{}, err
	}

	cloned := changes
	cloned.Orders = slices.Clone(changes.Orders)
	cloned.Plan = slices.Clone(changes.Plan)
	cloned.Reorder = maps.Clone(changes.Reorder)
	if changes.Notes != nil {
		notes := strings.TrimSpace(*changes.Notes)
		cloned.Notes = &notes
	}

	return UpdateRouteCommand{
		routeID: routeID,
		changes: cloned,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c UpdateRouteCommand) Changes() RouteChanges {
	return c.changes
}

// ChangesSchedule reports whether the window or a booked resource changes.
func (c UpdateRouteCommand) ChangesSchedule() bool {
	return c.changes.Window != nil || c.changes.VehicleID != nil || c.changes.DriverID != nil
}

// ChangesPlan reports whether the stops change.
func (c UpdateRouteCommand) ChangesPlan() bool {
	return c.changes.Orders != nil || c.changes.Plan != nil || c.changes.Reorder != nil
}

func (c UpdateRouteCommand) Validate() error {
	return c.guard.Validate(ErrUpdateRouteCommandIsNotConstructed)
}
