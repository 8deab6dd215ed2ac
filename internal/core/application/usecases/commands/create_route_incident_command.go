package commands

import (
	"errors"
	"slices"
	"strings"

	"fleet/internal/core/domain/model/incident"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrCreateRouteIncidentCommandIsNotConstructed = errors.New(
	"CreateRouteIncidentCommand must be created via NewCreateRouteIncidentCommand constructor",
)

// CreateRouteIncidentCommand reports a problem on a route, optionally on one of its
// stops, and optionally cancels the route.
type CreateRouteIncidentCommand struct {
	incidentID  kernel.UUID
	routeID     kernel.UUID
	stopID      *kernel.UUID
	kind        incident.Type
	description string
	photoRefs   []string
	reportedBy  *kernel.UUID
	cancelRoute bool
	guard       guard.ConstructorGuard
}

func NewCreateRouteIncidentCommand(
	routeID kernel.UUID,
	stopID *kernel.UUID,
	kind incident.Type,
	description string,
	photoRefs []string,
	reportedBy *kernel.UUID,
	cancelRoute bool,
) (CreateRouteIncidentCommand, error) {
	description = strings.TrimSpace(description)

	var stopErr, reporterErr, descriptionErr error
	if stopID != nil {
		stopErr = stopID.Validate()
	}
	if reportedBy != nil {
		reporterErr = reportedBy.Validate()
	}
	if description == "" {
		descriptionErr = errs.NewValueIsRequiredError("description")
	}

	if err := errors.Join(routeID.Validate(), stopErr, kind.Validate(), descriptionErr, reporterErr); err != nil {
		return CreateRouteIncidentCommand{}, err
	}

	return CreateRouteIncidentCommand{
		incidentID:  kernel.NewUUID(),
		routeID:     routeID,
		stopID:      copyUUID(stopID),
		kind:        kind,
		description: description,
		photoRefs:   slices.Clone(photoRefs),
		reportedBy:  copyUUID(reportedBy),
		cancelRoute: cancelRoute,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// IncidentID is the identifier the incident is stored with.
func (c CreateRouteIncidentCommand) IncidentID() kernel.UUID {
	return c.incidentID
}

func (c CreateRouteIncidentCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c CreateRouteIncidentCommand) StopID() *kernel.UUID {
	return copyUUID(c.stopID)
}

func (c CreateRouteIncidentCommand) Type() incident.Type {
	return c.kind
}

func (c CreateRouteIncidentCommand) Description() string {
	return c.description
}

func (c CreateRouteIncidentCommand) PhotoRefs() []string {
	return slices.Clone(c.photoRefs)
}

func (c CreateRouteIncidentCommand) ReportedBy() *kernel.UUID {
	return copyUUID(c.reportedBy)
}

func (c CreateRouteIncidentCommand) CancelRoute() bool {
	return c.cancelRoute
}

func (c CreateRouteIncidentCommand) Validate() error {
	return c.guard.Validate(ErrCreateRouteIncidentCommandIsNotConstructed)
}

func copyUUID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}
