package services

import (
	"fmt"
	"slices"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/pkg/errs"
)

// CapacityExceededError reports the first stop at which the running load goes over
// the vehicle capacity. StopIndex is the 1-based position in walk order and
// Profile the running load after each stop up to and including that one.
type CapacityExceededError struct {
	StopIndex   int
	Sequence    int
	OrderID     kernel.UUID
	Accumulated float64
	Capacity    float64
	Profile     []float64
}

// Excess is how many kilograms the load is over capacity.
func (e *CapacityExceededError) Excess() float64 {
	return e.Accumulated - e.Capacity
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: stop %d (sequence %d, order %s) carries %.2f kg, capacity is %.2f kg",
		errs.ErrCapacityExceeded, e.StopIndex, e.Sequence, e.OrderID, e.Accumulated, e.Capacity)
}

func (e *CapacityExceededError) Unwrap() error {
	return errs.ErrCapacityExceeded
}

// CapacitySimulator walks a stop plan by position, Dropoffs before Pickups inside
// a shared sequence, adding the order weight when the order comes on board and
// removing it when it leaves. A second Pickup of an order already on board adds
// nothing. It fails at the first stop where the running load is above capacity.
// Orders missing from weights weigh 0.
//
// Example:
//
//	err := services.NewCapacitySimulator().Simulate(v.Capacity(), plan, weights)
//	var exceeded *services.CapacityExceededError
//	if errors.As(err, &exceeded) {
//	    fmt.Println(exceeded.StopIndex, exceeded.Excess())
//	}
type CapacitySimulator struct{}

func NewCapacitySimulator() CapacitySimulator {
	return CapacitySimulator{}
}

// Simulate is skipped when capacity is nil or not positive.
func (c CapacitySimulator) Simulate(capacity *float64, plan []route.PlannedStop, weights map[kernel.UUID]float64) error {
	if capacity == nil || *capacity <= 0 {
		return nil
	}

	ordered := sortedBySequence(plan)
	profile := c.LoadProfile(plan, weights)
	for i, load := range profile {
		if load > *capacity {
			return &CapacityExceededError{
				StopIndex:   i + 1,
				Sequence:    ordered[i].Sequence,
				OrderID:     ordered[i].OrderID,
				Accumulated: load,
				Capacity:    *capacity,
				Profile:     profile[:i+1],
			}
		}
	}
	return nil
}

// LoadProfile returns the running load after each stop, in walk order.
func (CapacitySimulator) LoadProfile(plan []route.PlannedStop, weights map[kernel.UUID]float64) []float64 {
	ordered := sortedBySequence(plan)
	onBoard := make(map[kernel.UUID]bool, len(ordered))
	profile := make([]float64, 0, len(ordered))
	load := 0.0
	for _, s := range ordered {
		switch s.Operation {
		case route.Pickup:
			if !onBoard[s.OrderID] {
				onBoard[s.OrderID] = true
				load += weights[s.OrderID]
			}
		case route.Dropoff:
			if onBoard[s.OrderID] {
				onBoard[s.OrderID] = false
				load -= weights[s.OrderID]
			}
		}
		profile = append(profile, load)
	}
	return profile
}

func sortedBySequence(plan []route.PlannedStop) []route.PlannedStop {
	ordered := slices.Clone(plan)
	slices.SortStableFunc(ordered, route.ComparePosition)
	return ordered
}
