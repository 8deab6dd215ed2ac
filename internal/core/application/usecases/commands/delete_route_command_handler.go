package commands

import (
	"context"

	"fleet/internal/core/ports"
)

// DeleteRouteCommandHandler deletes a route in any status. Orders of the route that
// are not Delivered or Cancelled go back to Pending in the same transaction.
type DeleteRouteCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewDeleteRouteCommandHandler(uowFactory UoWFactory, clock ports.Clock, postCommit PostCommit) DeleteRouteCommandHandler {
	return DeleteRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h DeleteRouteCommandHandler) Handle(ctx context.Context, command DeleteRouteCommand) error {
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

	routeRepo := uow.RouteRepository()
	r, err := routeRepo.Get(ctx, command.RouteID())
	if err != nil {
		return err
	}

	orderIDs := r.OrderIDs()
	if err = releaseOrders(ctx, uow, orderIDs); err != nil {
		return err
	}

	r.MarkDeleted(h.clock.Now())
	if err = routeRepo.Delete(ctx, r.ID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.postCommit.RouteChanged(ctx, r, orderIDs)
	return nil
}
