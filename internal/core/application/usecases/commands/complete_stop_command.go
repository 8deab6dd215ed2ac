package commands

import (
	"errors"
	"slices"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrCompleteStopCommandIsNotConstructed = errors.New(
	"CompleteStopCommand must be created via NewCompleteStopCommand constructor",
)

// CompleteStopCommand marks a stop Delivered with optional proof references
// (signature or photo storage keys).
type CompleteStopCommand struct {
	routeID   kernel.UUID
	stopID    kernel.UUID
	proofRefs []string
	guard     guard.ConstructorGuard
}

func NewCompleteStopCommand(routeID, stopID kernel.UUID, proofRefs []string) (CompleteStopCommand, error) {
	if err := errors.Join(routeID.Validate(), stopID.Validate()); err != nil {
		return CompleteStopCommand{}, err
	}
	return CompleteStopCommand{
		routeID:   routeID,
		stopID:    stopID,
		proofRefs: slices.Clone(proofRefs),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteStopCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c CompleteStopCommand) StopID() kernel.UUID {
	return c.stopID
}

func (c CompleteStopCommand) ProofRefs() []string {
	return slices.Clone(c.proofRefs)
}

func (c CompleteStopCommand) Validate() error {
	return c.guard.Validate(ErrCompleteStopCommandIsNotConstructed)
}
