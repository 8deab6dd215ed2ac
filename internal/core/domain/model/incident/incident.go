// Package incident records problems reported by drivers or operators while a route
// is planned or running.
package incident

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var (
	ErrDescriptionIsRequired    = errs.NewValueIsRequiredError("description")
	ErrIncidentIsNotConstructed = errors.New("Incident must be created via NewIncident constructor")
)

// Type classifies an incident.
type Type int

const (
	UnknownType Type = iota
	Breakdown
	Delay
	CustomerAbsent
	Other
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		UnknownType:    "Unknown",
		Breakdown:      "Breakdown",
		Delay:          "Delay",
		CustomerAbsent: "CustomerAbsent",
		Other:          "Other",
	}
}

// ParseType maps a name back to a Type.
func ParseType(s string) (Type, error) {
	for t, name := range getTypeStrings() {
		if t != UnknownType && name == s {
			return t, nil
		}
	}
	return UnknownType, errs.NewValueIsInvalidErrorWithCause("type is invalid", fmt.Errorf("%q is not a valid incident type", s))
}

func (t Type) Validate() error {
	if t < Breakdown || t > Other {
		return errs.NewValueIsInvalidErrorWithCause("type is invalid", fmt.Errorf("%d is not a valid incident type", t))
	}
	return nil
}

func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "Unknown"
}

// Incident is an immutable report attached to a route and optionally to one of its stops.
type Incident struct {
	id          kernel.UUID
	routeID     kernel.UUID
	stopID      *kernel.UUID
	kind        Type
	description string
	photoRefs   []string
	reportedBy  *kernel.UUID
	createdAt   time.Time
	guard       guard.ConstructorGuard
}

// NewIncident creates an incident report.
//
// Example:
//
//	inc, err := incident.NewIncident(kernel.NewUUID(), routeID, &stopID, incident.CustomerAbsent,
//	    "nobody at the door", []string{"photos/1.jpg"}, &driverID, time.Now())
func NewIncident(
	id kernel.UUID,
	routeID kernel.UUID,
	stopID *kernel.UUID,
	kind Type,
	description string,
	photoRefs []string,
	reportedBy *kernel.UUID,
	createdAt time.Time,
) (*Incident, error) {
	description = strings.TrimSpace(description)

	var descriptionErr error
	if description == "" {
		descriptionErr = ErrDescriptionIsRequired
	}
	var stopErr error
	if stopID != nil {
		stopErr = stopID.Validate()
	}

	if err := errors.Join(
		id.Validate(),
		routeID.Validate(),
		stopErr,
		kind.Validate(),
		descriptionErr,
	); err != nil {
		return nil, err
	}

	return &Incident{
		id:          id,
		routeID:     routeID,
		stopID:      copyID(stopID),
		kind:        kind,
		description: description,
		photoRefs:   slices.Clone(photoRefs),
		reportedBy:  copyID(reportedBy),
		createdAt:   createdAt.UTC(),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (i *Incident) Validate() error {
	if i == nil {
		return ErrIncidentIsNotConstructed
	}
	return i.guard.Validate(ErrIncidentIsNotConstructed)
}

func (i *Incident) ID() kernel.UUID {
	return i.id
}

func (i *Incident) RouteID() kernel.UUID {
	return i.routeID
}

func (i *Incident) StopID() *kernel.UUID {
	return copyID(i.stopID)
}

func (i *Incident) Type() Type {
	return i.kind
}

func (i *Incident) Description() string {
	return i.description
}

func (i *Incident) PhotoRefs() []string {
	return slices.Clone(i.photoRefs)
}

func (i *Incident) ReportedBy() *kernel.UUID {
	return copyID(i.reportedBy)
}

func (i *Incident) CreatedAt() time.Time {
	return i.createdAt
}

func copyID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
