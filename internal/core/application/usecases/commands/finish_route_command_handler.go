package commands

import (
	"context"

	"fleet/internal/core/ports"
)

// FinishRouteCommandHandler completes an InProgress route. Every stop must be
// Delivered; otherwise the error carries the number of open stops.
type FinishRouteCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewFinishRouteCommandHandler(uowFactory UoWFactory, clock ports.Clock, postCommit PostCommit) FinishRouteCommandHandler {
	return FinishRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h FinishRouteCommandHandler) Handle(ctx context.Context, command FinishRouteCommand) error {
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

	if err = r.Finish(command.CallerDriverID(), h.clock.Now()); err != nil {
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
