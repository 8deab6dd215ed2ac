package commands

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/ports"
)

// CompleteStopCommandHandler delivers a stop of an InProgress route.
//
// Completing a Dropoff whose order has no other open stop on the route delivers
// the order. Completing a Pickup leaves the order as it is.
type CompleteStopCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewCompleteStopCommandHandler(uowFactory UoWFactory, clock ports.Clock, postCommit PostCommit) CompleteStopCommandHandler {
	return CompleteStopCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h CompleteStopCommandHandler) Handle(ctx context.Context, command CompleteStopCommand) error {
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

	s, err := r.CompleteStop(command.StopID(), command.ProofRefs(), h.clock.Now())
	if err != nil {
		return err
	}
	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	var touched []kernel.UUID
	if s.Operation() == route.Dropoff && !r.HasOpenStopsFor(s.OrderID(), s.ID()) {
		orderRepo := uow.OrderRepository()
		o, getErr := orderRepo.Get(ctx, s.OrderID())
		if getErr != nil {
			return getErr
		}
		if err = o.Deliver(); err != nil {
			return err
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}
		touched = append(touched, o.ID())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.postCommit.RouteChanged(ctx, r, touched)
	return nil
}
