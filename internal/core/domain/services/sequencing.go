package services

import (
	"fmt"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/pkg/errs"
)

// Violation names the sequencing rule a plan breaks.
type Violation string

const (
	ViolationMissingPickup        Violation = "MissingPickup"
	ViolationMissingDropoff       Violation = "MissingDropoff"
	ViolationOutOfOrder           Violation = "OutOfOrder"
	ViolationNonMonotonic         Violation = "NonMonotonic"
	ViolationEndBeforeLastDropoff Violation = "EndBeforeLastDropoff"
	ViolationDuplicateStop        Violation = "DuplicateStop"
	ViolationUnknownOrder         Violation = "UnknownOrder"
)

// SequencingError reports the first rule a stop plan breaks. OrderID is nil for
// violations that are not about a single order.
type SequencingError struct {
	Violation Violation
	OrderID   *kernel.UUID
	Sequence  int
	Detail    string
}

func (e *SequencingError) Error() string {
	msg := fmt.Sprintf("%s: %s", errs.ErrSequencingViolation, e.Violation)
	if e.OrderID != nil {
		msg += fmt.Sprintf(" for order %s", e.OrderID)
	}
	if e.Sequence > 0 {
		msg += fmt.Sprintf(" at sequence %d", e.Sequence)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *SequencingError) Unwrap() error {
	return errs.ErrSequencingViolation
}

// SequencingValidator checks that a stop plan can actually be driven.
//
// Stops sharing a sequence form one grouped position. The plan is walked by
// position, Dropoffs before Pickups inside a position, and checked for:
//   - every stop belongs to one of the route orders
//   - a Dropoff needs a Pickup of the same order at an earlier position
//   - an order can be picked up again; the first Dropoff after that ends the load
//     and a Dropoff of an order no longer on board is a DuplicateStop
//   - a Dropoff is not timed before the latest timed Pickup of its order
//   - timed stops never go back in time relative to timed stops at earlier positions
//
// After the walk every route order must have been picked up and dropped off, and
// the route end must not be before the latest timed Dropoff. Stops without
// PlannedAt count for existence rules and are skipped by time rules.
type SequencingValidator struct{}

func NewSequencingValidator() SequencingValidator {
	return SequencingValidator{}
}

func (SequencingValidator) Validate(plan []route.PlannedStop, routeEnd time.Time, orderIDs []kernel.UUID) error {
	known := make(map[kernel.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		known[id] = struct{}{}
	}

	type progress struct {
		pickedUp bool
		onBoard  bool
		pickupAt *time.Time
	}
	seen := make(map[kernel.UUID]*progress, len(orderIDs))

	// latest planned time of the positions already left behind and of the current one
	var previousTimed, positionTimed *time.Time
	var lastDropoff *time.Time
	position := 0

	for _, s := range sortedBySequence(plan) {
		orderID := s.OrderID
		if s.Sequence != position {
			previousTimed = latest(previousTimed, positionTimed)
			positionTimed = nil
			position = s.Sequence
		}
		if _, ok := known[orderID]; !ok {
			return &SequencingError{Violation: ViolationUnknownOrder, OrderID: &orderID, Sequence: s.Sequence}
		}

		p, ok := seen[orderID]
		if !ok {
			p = &progress{}
			seen[orderID] = p
		}

		switch s.Operation {
		case route.Pickup:
			p.pickedUp = true
			p.onBoard = true
			if s.PlannedAt != nil {
				p.pickupAt = s.PlannedAt
			}
		case route.Dropoff:
			if !p.pickedUp {
				return &SequencingError{Violation: ViolationMissingPickup, OrderID: &orderID, Sequence: s.Sequence,
					Detail: "dropoff has no earlier pickup"}
			}
			if !p.onBoard {
				return &SequencingError{Violation: ViolationDuplicateStop, OrderID: &orderID, Sequence: s.Sequence,
					Detail: "order was already dropped off"}
			}
			if s.PlannedAt != nil && p.pickupAt != nil && s.PlannedAt.Before(*p.pickupAt) {
				return &SequencingError{Violation: ViolationOutOfOrder, OrderID: &orderID, Sequence: s.Sequence,
					Detail: fmt.Sprintf("dropoff at %s is before pickup at %s",
						s.PlannedAt.UTC().Format(time.RFC3339), p.pickupAt.UTC().Format(time.RFC3339))}
			}
			p.onBoard = false
			lastDropoff = latest(lastDropoff, s.PlannedAt)
		default:
			return errs.NewValueIsInvalidErrorWithCause("operation is invalid",
				fmt.Errorf("stop at sequence %d has operation %s", s.Sequence, s.Operation))
		}

		if s.PlannedAt != nil {
			if previousTimed != nil && s.PlannedAt.Before(*previousTimed) {
				return &SequencingError{Violation: ViolationNonMonotonic, OrderID: &orderID, Sequence: s.Sequence,
					Detail: fmt.Sprintf("planned at %s, previous stop at %s",
						s.PlannedAt.UTC().Format(time.RFC3339), previousTimed.UTC().Format(time.RFC3339))}
			}
			positionTimed = latest(positionTimed, s.PlannedAt)
		}
	}

	for _, id := range orderIDs {
		orderID := id
		p, ok := seen[orderID]
		if !ok || !p.pickedUp {
			return &SequencingError{Violation: ViolationMissingPickup, OrderID: &orderID, Detail: "order has no pickup"}
		}
		if p.onBoard {
			return &SequencingError{Violation: ViolationMissingDropoff, OrderID: &orderID, Detail: "order has no dropoff"}
		}
	}

	if lastDropoff != nil && routeEnd.Before(*lastDropoff) {
		return &SequencingError{Violation: ViolationEndBeforeLastDropoff,
			Detail: fmt.Sprintf("route ends at %s, last dropoff at %s",
				routeEnd.UTC().Format(time.RFC3339), lastDropoff.UTC().Format(time.RFC3339))}
	}
	return nil
}

func latest(a, b *time.Time) *time.Time {
	if a == nil || (b != nil && b.After(*a)) {
		return b
	}
	return a
}
