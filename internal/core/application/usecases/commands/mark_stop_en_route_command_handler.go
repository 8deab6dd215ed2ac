package commands

import (
	"context"

	"fleet/internal/core/ports"
)

// MarkStopEnRouteCommandHandler moves a Pending stop of an InProgress route to EnRoute.
type MarkStopEnRouteCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewMarkStopEnRouteCommandHandler(uowFactory UoWFactory, clock ports.Clock, postCommit PostCommit) MarkStopEnRouteCommandHandler {
	return MarkStopEnRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h MarkStopEnRouteCommandHandler) Handle(ctx context.Context, command MarkStopEnRouteCommand) error {
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

	if _, err = r.MarkStopEnRoute(command.StopID(), h.clock.Now()); err != nil {
		return err
	}
	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.postCommit.RouteChanged(ctx, r, nil)
	return nil
}
