package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrMarkStopEnRouteCommandIsNotConstructed = errors.New(
	"MarkStopEnRouteCommand must be created via NewMarkStopEnRouteCommand constructor",
)

// MarkStopEnRouteCommand records that the driver left for a stop.
type MarkStopEnRouteCommand struct {
	routeID kernel.UUID
	stopID  kernel.UUID
	guard   guard.ConstructorGuard
}

func NewMarkStopEnRouteCommand(routeID, stopID kernel.UUID) (MarkStopEnRouteCommand, error) {
	if err := errors.Join(routeID.Validate(), stopID.Validate()); err != nil {
		return MarkStopEnRouteCommand{}, err
	}
	return MarkStopEnRouteCommand{
		routeID: routeID,
		stopID:  stopID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c MarkStopEnRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c MarkStopEnRouteCommand) StopID() kernel.UUID {
	return c.stopID
}

func (c MarkStopEnRouteCommand) Validate() error {
	return c.guard.Validate(ErrMarkStopEnRouteCommandIsNotConstructed)
}
