package route

import (
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
)

// PlanOrder carries what DefaultPlan needs to know about one order.
type PlanOrder struct {
	OrderID        kernel.UUID
	PickupAddress  string
	DropoffAddress string
	PickupAt       *time.Time
	DropoffAt      *time.Time
}

// DefaultPlan builds the stop plan used when the caller supplies none: for every
// order, in the given order, a Pickup at its pickup address followed by a Dropoff at
// its drop-off address.
//
// Stops with the same operation, the same address (case and surrounding spaces
// ignored) and the same planned time share one sequence position. Positions are
// numbered from 1 in order of first appearance. A Dropoff only joins a position
// that comes after the Pickup of its order; otherwise it opens a new one.
//
// Example:
//
//	plan := route.DefaultPlan([]route.PlanOrder{
//	    {OrderID: o1, PickupAddress: "Depot", DropoffAddress: "Main St 1"},
//	    {OrderID: o2, PickupAddress: "Depot", DropoffAddress: "Main St 2"},
//	})
//	// P(o1)=1, D(o1)=2, P(o2)=1, D(o2)=3
func DefaultPlan(orders []PlanOrder) []PlannedStop {
	positions := make(map[string]int, len(orders)*2)
	next := 1
	position := func(op Operation, address string, at *time.Time, after int) int {
		key := groupKey(op, address, at)
		if p, ok := positions[key]; ok && p > after {
			return p
		}
		p := next
		next++
		positions[key] = p
		return p
	}

	plan := make([]PlannedStop, 0, len(orders)*2)
	for _, o := range orders {
		pickup := position(Pickup, o.PickupAddress, o.PickupAt, 0)
		dropoff := position(Dropoff, o.DropoffAddress, o.DropoffAt, pickup)
		plan = append(plan,
			PlannedStop{
				OrderID:   o.OrderID,
				Operation: Pickup,
				Sequence:  pickup,
				Address:   o.PickupAddress,
				PlannedAt: o.PickupAt,
			},
			PlannedStop{
				OrderID:   o.OrderID,
				Operation: Dropoff,
				Sequence:  dropoff,
				Address:   o.DropoffAddress,
				PlannedAt: o.DropoffAt,
			},
		)
	}
	return plan
}

func groupKey(op Operation, address string, at *time.Time) string {
	key := op.String() + "|" + strings.ToLower(strings.TrimSpace(address))
	if at != nil {
		key += "|" + at.UTC().Format(time.RFC3339Nano)
	}
	return key
}

// ComparePosition orders plan entries by sequence. Inside a shared sequence
// Dropoffs come before Pickups, so the vehicle unloads before it loads.
func ComparePosition(a, b PlannedStop) int {
	return comparePosition(a.Sequence, a.Operation, b.Sequence, b.Operation)
}

func comparePosition(sequenceA int, opA Operation, sequenceB int, opB Operation) int {
	if sequenceA != sequenceB {
		return sequenceA - sequenceB
	}
	return operationRank(opA) - operationRank(opB)
}

func operationRank(op Operation) int {
	if op == Dropoff {
		return 0
	}
	return 1
}

// OrderIDs returns the distinct orders of a plan in order of first appearance.
func OrderIDs(plan []PlannedStop) []kernel.UUID {
	seen := make(map[kernel.UUID]struct{}, len(plan))
	ids := make([]kernel.UUID, 0, len(plan)/2+1)
	for _, s := range plan {
		if _, ok := seen[s.OrderID]; ok {
			continue
		}
		seen[s.OrderID] = struct{}{}
		ids = append(ids, s.OrderID)
	}
	return ids
}
