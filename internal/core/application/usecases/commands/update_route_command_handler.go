package commands

import (
	"context"
	"slices"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/order"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/core/ports"
)

// UpdateRouteCommandHandler edits a Planned route and revalidates everything the
// change can break. The plan is replaced as a whole, so a failed update leaves the
// stored route untouched. Orders leaving the route go back to Pending; orders
// joining it move to EnRoute.
type UpdateRouteCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewUpdateRouteCommandHandler(uowFactory UoWFactory, clock ports.Clock, postCommit PostCommit) UpdateRouteCommandHandler {
	return UpdateRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h UpdateRouteCommandHandler) Handle(ctx context.Context, command UpdateRouteCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	changes := command.Changes()
	routeRepo := uow.RouteRepository()
	orderRepo := uow.OrderRepository()

	r, err := routeRepo.Get(ctx, command.RouteID())
	if err != nil {
		return err
	}
	if changes.ExpectedVersion != nil {
		if err = r.ExpectVersion(*changes.ExpectedVersion); err != nil {
			return err
		}
	}

	window := valueOr(changes.Window, r.Window())
	vehicleID := valueOr(changes.VehicleID, r.VehicleID())
	driverID := valueOr(changes.DriverID, r.DriverID())
	notes := valueOr(changes.Notes, r.Notes())
	if err = r.Reschedule(window, vehicleID, driverID, notes, now); err != nil {
		return err
	}

	routeID := r.ID()
	var v *vehicle.Vehicle
	if command.ChangesSchedule() {
		v, err = checkResources(ctx, uow, now, resourceCheck{
			window:         window,
			vehicleID:      vehicleID,
			driverID:       driverID,
			excludeRouteID: &routeID,
		})
	} else {
		v, err = uow.VehicleRepository().Get(ctx, vehicleID)
	}
	if err != nil {
		return err
	}

	currentIDs := r.OrderIDs()
	nextIDs := currentIDs
	if changes.Orders != nil {
		nextIDs = orderIDsOf(changes.Orders)
	}
	added, removed := diffOrderIDs(currentIDs, nextIDs)

	orders, err := orderRepo.GetMany(ctx, nextIDs)
	if err != nil {
		return err
	}
	if err = checkAssignable(ctx, uow, pickOrders(orders, added), &routeID); err != nil {
		return err
	}

	var plan []route.PlannedStop
	switch {
	case changes.Reorder != nil:
		if err = r.Reorder(changes.Reorder, now); err != nil {
			return err
		}
		plan = r.Plan()
	case len(changes.Plan) > 0:
		plan = changes.Plan
	case changes.Orders != nil:
		plan = defaultPlan(changes.Orders, orders)
	default:
		plan = r.Plan()
	}

	if command.ChangesSchedule() || command.ChangesPlan() {
		if err = checkPlan(plan, window, orders, v); err != nil {
			return err
		}
	}

	if changes.Orders != nil || len(changes.Plan) > 0 {
		if err = r.ReplacePlan(plan, now); err != nil {
			return err
		}
	}
	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	for _, o := range pickOrders(orders, added) {
		if err = o.AssignToRoute(); err != nil {
			return err
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}
	}
	if err = releaseOrders(ctx, uow, removed); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.postCommit.RouteChanged(ctx, r, append(slices.Clone(nextIDs), removed...))
	return nil
}

func valueOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}

// diffOrderIDs returns the ids present only in next and only in current.
func diffOrderIDs(current, next []kernel.UUID) (added, removed []kernel.UUID) {
	for _, id := range next {
		if !slices.Contains(current, id) {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if !slices.Contains(next, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func pickOrders(orders []*order.Order, ids []kernel.UUID) []*order.Order {
	picked := make([]*order.Order, 0, len(ids))
	for _, o := range orders {
		if slices.Contains(ids, o.ID()) {
			picked = append(picked, o)
		}
	}
	return picked
}
