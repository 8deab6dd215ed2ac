package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrDeleteRouteCommandIsNotConstructed = errors.New(
	"DeleteRouteCommand must be created via NewDeleteRouteCommand constructor",
)

// DeleteRouteCommand removes a route with its stops and frees its orders.
type DeleteRouteCommand struct {
	routeID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewDeleteRouteCommand(routeID kernel.UUID) (DeleteRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return DeleteRouteCommand{}, err
	}
	return DeleteRouteCommand{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c DeleteRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c DeleteRouteCommand) Validate() error {
	return c.guard.Validate(ErrDeleteRouteCommandIsNotConstructed)
}
