package commands

import (
	"context"

	"fleet/internal/core/ports"
)

// StartRouteCommandHandler moves a route from Planned to InProgress.
type StartRouteCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewStartRouteCommandHandler(uowFactory UoWFactory, clock ports.Clock, postCommit PostCommit) StartRouteCommandHandler {
	return StartRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h StartRouteCommandHandler) Handle(ctx context.Context, command StartRouteCommand) error {
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

	if err = r.Start(command.CallerDriverID(), h.clock.Now()); err != nil {
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
