package route

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

var ErrStopIsNotConstructed = errors.New("Stop must be created via NewStop constructor")

// Operation tells what happens to the order at a stop.
type Operation int

const (
	UnknownOperation Operation = iota
	Pickup
	Dropoff
)

func (o Operation) String() string {
	switch o {
	case Pickup:
		return "Pickup"
	case Dropoff:
		return "Dropoff"
	default:
		return "Unknown"
	}
}

// ParseOperation maps the persisted name back to an Operation.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "Pickup":
		return Pickup, nil
	case "Dropoff":
		return Dropoff, nil
	default:
		return UnknownOperation, errs.NewValueIsInvalidErrorWithCause("operation is invalid", fmt.Errorf("%q is not a valid operation", s))
	}
}

func (o Operation) Validate() error {
	if o != Pickup && o != Dropoff {
		return errs.NewValueIsInvalidErrorWithCause("operation is invalid", fmt.Errorf("%d is not a valid operation", o))
	}
	return nil
}

// StopStatus is the lifecycle state of a stop.
type StopStatus int

const (
	UnknownStopStatus StopStatus = iota
	StopPending
	StopEnRoute
	StopDelivered
	StopIncident
)

func getStopStatusStrings() map[StopStatus]string {
	return map[StopStatus]string{
		UnknownStopStatus: "Unknown",
		StopPending:       "Pending",
		StopEnRoute:       "EnRoute",
		StopDelivered:     "Delivered",
		StopIncident:      "Incident",
	}
}

// ParseStopStatus maps the persisted name back to a StopStatus.
func ParseStopStatus(s string) (StopStatus, error) {
	for status, name := range getStopStatusStrings() {
		if status != UnknownStopStatus && name == s {
			return status, nil
		}
	}
	return UnknownStopStatus, errs.NewValueIsInvalidErrorWithCause("stop status is invalid", fmt.Errorf("%q is not a valid stop status", s))
}

func (s StopStatus) Validate() error {
	if s < StopPending || s > StopIncident {
		return errs.NewValueIsInvalidErrorWithCause("stop status is invalid", fmt.Errorf("%d is not a valid stop status", s))
	}
	return nil
}

func (s StopStatus) String() string {
	if str, ok := getStopStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// PlannedStop is one entry of a stop plan supplied by the caller or generated by
// DefaultPlan. Plans are validated before they become Stops.
type PlannedStop struct {
	OrderID   kernel.UUID
	Operation Operation
	Sequence  int
	Address   string

	// PlannedAt is the expected arrival time; nil skips time ordering checks
	PlannedAt *time.Time
}

// Stop is a visit of the route to an address to pick up or drop off one order.
type Stop struct {
	id          kernel.UUID
	orderID     kernel.UUID
	operation   Operation
	sequence    int
	address     string
	plannedAt   *time.Time
	status      StopStatus
	completedAt *time.Time
	proofRefs   []string
	guard       guard.ConstructorGuard
}

// NewStop creates a Pending stop from a plan entry.
func NewStop(id kernel.UUID, planned PlannedStop) (*Stop, error) {
	return RestoreStop(id, planned, StopPending, nil, nil)
}

// RestoreStop rebuilds a stop loaded from storage.
func RestoreStop(
	id kernel.UUID,
	planned PlannedStop,
	status StopStatus,
	completedAt *time.Time,
	proofRefs []string,
) (*Stop, error) {
	s := &Stop{
		address:     strings.TrimSpace(planned.Address),
		sequence:    planned.Sequence,
		plannedAt:   utcPtr(planned.PlannedAt),
		completedAt: utcPtr(completedAt),
		proofRefs:   slices.Clone(proofRefs),
		guard:       guard.NewConstructorGuard(),
	}

	var sequenceErr error
	if planned.Sequence < 1 {
		sequenceErr = errs.NewValueIsOutOfRangeError("sequence", planned.Sequence, 1, "unbounded")
	}
	var addressErr error
	if s.address == "" {
		addressErr = errs.NewValueIsRequiredError("address")
	}

	if err := errors.Join(
		id.Validate(),
		planned.OrderID.Validate(),
		planned.Operation.Validate(),
		status.Validate(),
		sequenceErr,
		addressErr,
	); err != nil {
		return nil, err
	}

	s.id = id
	s.orderID = planned.OrderID
	s.operation = planned.Operation
	s.status = status
	return s, nil
}

func (s *Stop) Validate() error {
	if s == nil {
		return ErrStopIsNotConstructed
	}
	return s.guard.Validate(ErrStopIsNotConstructed)
}

func (s *Stop) ID() kernel.UUID {
	return s.id
}

func (s *Stop) OrderID() kernel.UUID {
	return s.orderID
}

func (s *Stop) Operation() Operation {
	return s.operation
}

func (s *Stop) Sequence() int {
	return s.sequence
}

func (s *Stop) Address() string {
	return s.address
}

func (s *Stop) PlannedAt() *time.Time {
	return utcPtr(s.plannedAt)
}

func (s *Stop) Status() StopStatus {
	return s.status
}

func (s *Stop) CompletedAt() *time.Time {
	return utcPtr(s.completedAt)
}

// ProofRefs returns references to delivery proofs such as photo or signature keys.
func (s *Stop) ProofRefs() []string {
	return slices.Clone(s.proofRefs)
}

// IsOpen reports whether the stop still has work left.
func (s *Stop) IsOpen() bool {
	return s.status != StopDelivered
}

// Planned returns the stop as a plan entry, for revalidation.
func (s *Stop) Planned() PlannedStop {
	return PlannedStop{
		OrderID:   s.orderID,
		Operation: s.operation,
		Sequence:  s.sequence,
		Address:   s.address,
		PlannedAt: utcPtr(s.plannedAt),
	}
}

func (s *Stop) depart() error {
	if s.status != StopPending {
		return errs.NewStateConflictError("stop", s.id, fmt.Sprintf("cannot depart to a %s stop", s.status))
	}
	s.status = StopEnRoute
	return nil
}

func (s *Stop) complete(proofRefs []string, now time.Time) error {
	if s.status != StopPending && s.status != StopEnRoute {
		return errs.NewStateConflictError("stop", s.id, fmt.Sprintf("cannot complete a %s stop", s.status))
	}
	completedAt := now.UTC()
	s.status = StopDelivered
	s.completedAt = &completedAt
	s.proofRefs = append(s.proofRefs, proofRefs...)
	return nil
}

func (s *Stop) reportIncident() error {
	if s.status != StopPending && s.status != StopEnRoute {
		return errs.NewStateConflictError("stop", s.id, fmt.Sprintf("cannot report an incident on a %s stop", s.status))
	}
	s.status = StopIncident
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
