package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrStartRouteCommandIsNotConstructed = errors.New(
	"StartRouteCommand must be created via NewStartRouteCommand constructor",
)

// StartRouteCommand starts a Planned route on behalf of the calling driver.
type StartRouteCommand struct {
	routeID        kernel.UUID
	callerDriverID kernel.UUID
	guard          guard.ConstructorGuard
}

func NewStartRouteCommand(routeID, callerDriverID kernel.UUID) (StartRouteCommand, error) {
	if err := errors.Join(routeID.Validate(), callerDriverID.Validate()); err != nil {
		return StartRouteCommand{}, err
	}
	return StartRouteCommand{
		routeID:        routeID,
		callerDriverID: callerDriverID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c StartRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c StartRouteCommand) CallerDriverID() kernel.UUID {
	return c.callerDriverID
}

func (c StartRouteCommand) Validate() error {
	return c.guard.Validate(ErrStartRouteCommandIsNotConstructed)
}
