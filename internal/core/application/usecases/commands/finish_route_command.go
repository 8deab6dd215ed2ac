package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrFinishRouteCommandIsNotConstructed = errors.New(
	"FinishRouteCommand must be created via NewFinishRouteCommand constructor",
)

// FinishRouteCommand finishes an InProgress route on behalf of the calling driver.
type FinishRouteCommand struct {
	routeID        kernel.UUID
	callerDriverID kernel.UUID
	guard          guard.ConstructorGuard
}

func NewFinishRouteCommand(routeID, callerDriverID kernel.UUID) (FinishRouteCommand, error) {
	if err := errors.Join(routeID.Validate(), callerDriverID.Validate()); err != nil {
		return FinishRouteCommand{}, err
	}
	return FinishRouteCommand{
		routeID:        routeID,
		callerDriverID: callerDriverID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c FinishRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c FinishRouteCommand) CallerDriverID() kernel.UUID {
	return c.callerDriverID
}

func (c FinishRouteCommand) Validate() error {
	return c.guard.Validate(ErrFinishRouteCommandIsNotConstructed)
}
