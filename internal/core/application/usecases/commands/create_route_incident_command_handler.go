package commands

import (
	"context"
	"slices"

	"fleet/internal/core/domain/model/incident"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/order"
	"fleet/internal/core/ports"
)

// CreateRouteIncidentCommandHandler stores an incident report.
//
// With a stop, the stop goes to Incident and so does its order unless it was
// already Delivered. With cancelRoute the route is cancelled and its orders are
// released, as CancelRouteCommandHandler does.
type CreateRouteIncidentCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	postCommit PostCommit
}

func NewCreateRouteIncidentCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	postCommit PostCommit,
) CreateRouteIncidentCommandHandler {
	return CreateRouteIncidentCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		postCommit: postCommit,
	}
}

func (h CreateRouteIncidentCommandHandler) Handle(ctx context.Context, command CreateRouteIncidentCommand) error {
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
	routeRepo := uow.RouteRepository()
	orderRepo := uow.OrderRepository()

	r, err := routeRepo.Get(ctx, command.RouteID())
	if err != nil {
		return err
	}

	routeChanged := false
	var touched []kernel.UUID

	if stopID := command.StopID(); stopID != nil {
		s, stopErr := r.ReportStopIncident(*stopID, now)
		if stopErr != nil {
			return stopErr
		}
		routeChanged = true

		o, getErr := orderRepo.Get(ctx, s.OrderID())
		if getErr != nil {
			return getErr
		}
		if o.Status() != order.Delivered {
			if err = o.ReportIncident(); err != nil {
				return err
			}
			if err = orderRepo.Update(ctx, o); err != nil {
				return err
			}
		}
		touched = append(touched, o.ID())
	}

	if command.CancelRoute() {
		if err = r.Cancel(now); err != nil {
			return err
		}
		routeChanged = true
	}

	if routeChanged {
		if err = routeRepo.Update(ctx, r); err != nil {
			return err
		}
	}

	if command.CancelRoute() {
		orderIDs := r.OrderIDs()
		if err = releaseOrders(ctx, uow, orderIDs); err != nil {
			return err
		}
		for _, id := range orderIDs {
			if !slices.Contains(touched, id) {
				touched = append(touched, id)
			}
		}
	}

	inc, err := incident.NewIncident(command.IncidentID(), r.ID(), command.StopID(), command.Type(),
		command.Description(), command.PhotoRefs(), command.ReportedBy(), now)
	if err != nil {
		return err
	}
	if err = uow.IncidentRepository().Add(ctx, inc); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.postCommit.RouteChanged(ctx, r, touched)
	return nil
}
