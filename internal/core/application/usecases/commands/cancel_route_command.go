package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrCancelRouteCommandIsNotConstructed = errors.New(
	"CancelRouteCommand must be created via NewCancelRouteCommand constructor",
)

// CancelRouteCommand cancels a Planned or InProgress route.
type CancelRouteCommand struct {
	routeID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewCancelRouteCommand(routeID kernel.UUID) (CancelRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return CancelRouteCommand{}, err
	}
	return CancelRouteCommand{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CancelRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c CancelRouteCommand) Validate() error {
	return c.guard.Validate(ErrCancelRouteCommandIsNotConstructed)
}
