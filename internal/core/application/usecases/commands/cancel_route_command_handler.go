package commands

import (
	"context"

	"fleet/internal/core/ports"
)

// CancelRouteCommandHandler cancels a route and releases its orders: EnRoute and
// Incident orders go back to Pending, Delivered ones stay Delivered.
type CancelRouteCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewCancelRouteCommandHandler(uowFactory UoWFactory, clock ports.Clock, postCommit PostCommit) CancelRouteCommandHandler {
	return CancelRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h CancelRouteCommandHandler) Handle(ctx context.Context, command CancelRouteCommand) error {
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

	if err = r.Cancel(h.clock.Now()); err != nil {
		return err
	}
	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	orderIDs := r.OrderIDs()
	if err = releaseOrders(ctx, uow, orderIDs); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.postCommit.RouteChanged(ctx, r, orderIDs)
	return nil
}
