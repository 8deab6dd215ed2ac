package commands

import (
	"context"

	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/ports"
)

// CreateRouteCommandHandler validates and persists a new route.
//
// Checks run in this order and stop at the first failure, before anything is written:
//  1. vehicle eligibility and overlaps
//  2. driver eligibility and overlaps
//  3. order existence, eligibility and duplicate assignment
//  4. stop sequencing
//  5. load simulation against vehicle capacity
//
// On success the route is stored, its orders move to EnRoute and the transaction
// commits; cache invalidation and event publishing follow.
type CreateRouteCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewCreateRouteCommandHandler(uowFactory UoWFactory, clock ports.Clock, postCommit PostCommit) CreateRouteCommandHandler {
	return CreateRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h CreateRouteCommandHandler) Handle(ctx context.Context, command CreateRouteCommand) error {
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

	v, err := checkResources(ctx, uow, now, resourceCheck{
		window:    command.Window(),
		vehicleID: command.VehicleID(),
		driverID:  command.DriverID(),
	})
	if err != nil {
		return err
	}

	orderRepo := uow.OrderRepository()
	orderIDs := orderIDsOf(command.Orders())
	orders, err := orderRepo.GetMany(ctx, orderIDs)
	if err != nil {
		return err
	}
	if err = checkAssignable(ctx, uow, orders, nil); err != nil {
		return err
	}

	plan := command.Plan()
	if len(plan) == 0 {
		plan = defaultPlan(command.Orders(), orders)
	}
	if err = checkPlan(plan, command.Window(), orders, v); err != nil {
		return err
	}

	r, err := route.NewRoute(command.RouteID(), command.Window(), command.VehicleID(), command.DriverID(),
		command.Notes(), plan, now)
	if err != nil {
		return err
	}
	if err = uow.RouteRepository().Add(ctx, r); err != nil {
		return err
	}

	for _, o := range orders {
		if err = o.AssignToRoute(); err != nil {
			return err
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.postCommit.RouteChanged(ctx, r, orderIDs)
	return nil
}
