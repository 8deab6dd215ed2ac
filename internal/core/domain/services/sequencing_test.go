package services_test

import (
	"testing"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/domain/services"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedStop(orderID kernel.UUID, op route.Operation, sequence int, plannedAt time.Time) route.PlannedStop {
	s := stop(orderID, op, sequence)
	s.PlannedAt = &plannedAt
	return s
}

func requireViolation(t *testing.T, err error, want services.Violation) *services.SequencingError {
	t.Helper()
	require.ErrorIs(t, err, errs.ErrSequencingViolation)
	var seqErr *services.SequencingError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, want, seqErr.Violation)
	return seqErr
}

func TestSequencingValidator_Validate(t *testing.T) {
	validator := services.NewSequencingValidator()
	routeEnd := at(10, 18)
	o1, o2 := kernel.NewUUID(), kernel.NewUUID()

	t.Run("should accept default plan", func(t *testing.T) {
		plan := route.DefaultPlan([]route.PlanOrder{
			{OrderID: o1, PickupAddress: "A", DropoffAddress: "B"},
			{OrderID: o2, PickupAddress: "C", DropoffAddress: "D"},
		})

		require.NoError(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1, o2}))
	})

	t.Run("should accept interleaved timed plan", func(t *testing.T) {
		plan := []route.PlannedStop{
			timedStop(o1, route.Pickup, 1, at(10, 8)),
			timedStop(o2, route.Pickup, 2, at(10, 9)),
			stop(o1, route.Dropoff, 3),
			timedStop(o2, route.Dropoff, 4, at(10, 11)),
		}

		require.NoError(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1, o2}))
	})

	t.Run("should reject dropoff without pickup", func(t *testing.T) {
		o7 := kernel.NewUUID()
		plan := []route.PlannedStop{
			stop(o1, route.Pickup, 1),
			stop(o1, route.Dropoff, 2),
			stop(o7, route.Dropoff, 3),
		}

		seqErr := requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1, o7}), services.ViolationMissingPickup)
		require.NotNil(t, seqErr.OrderID)
		assert.Equal(t, o7, *seqErr.OrderID)
		assert.Equal(t, 3, seqErr.Sequence)
	})

	t.Run("should reject dropoff sequenced before pickup", func(t *testing.T) {
		plan := []route.PlannedStop{stop(o1, route.Dropoff, 1), stop(o1, route.Pickup, 2)}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationMissingPickup)
	})

	t.Run("should reject dropoff timed before pickup", func(t *testing.T) {
		plan := []route.PlannedStop{
			timedStop(o1, route.Pickup, 1, at(10, 10)),
			timedStop(o1, route.Dropoff, 2, at(10, 9)),
		}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationOutOfOrder)
	})

	t.Run("should reject time going backwards", func(t *testing.T) {
		plan := []route.PlannedStop{
			timedStop(o1, route.Pickup, 1, at(10, 8)),
			timedStop(o2, route.Pickup, 2, at(10, 10)),
			stop(o1, route.Dropoff, 3),
			timedStop(o2, route.Dropoff, 4, at(10, 9)),
		}

		seqErr := requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1, o2}), services.ViolationOutOfOrder)
		assert.Equal(t, 4, seqErr.Sequence)
	})

	t.Run("should reject non monotonic timestamps across orders", func(t *testing.T) {
		plan := []route.PlannedStop{
			timedStop(o1, route.Pickup, 1, at(10, 10)),
			timedStop(o2, route.Pickup, 2, at(10, 9)),
			stop(o1, route.Dropoff, 3),
			stop(o2, route.Dropoff, 4),
		}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1, o2}), services.ViolationNonMonotonic)
	})

	t.Run("should reject route ending before last dropoff", func(t *testing.T) {
		plan := []route.PlannedStop{
			timedStop(o1, route.Pickup, 1, at(10, 8)),
			timedStop(o1, route.Dropoff, 2, at(10, 19)),
		}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationEndBeforeLastDropoff)
	})

	t.Run("should reject missing dropoff", func(t *testing.T) {
		plan := []route.PlannedStop{stop(o1, route.Pickup, 1)}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationMissingDropoff)
	})

	t.Run("should reject order without stops", func(t *testing.T) {
		plan := []route.PlannedStop{stop(o1, route.Pickup, 1), stop(o1, route.Dropoff, 2)}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1, o2}), services.ViolationMissingPickup)
	})

	t.Run("should accept pickups grouped at one position", func(t *testing.T) {
		plan := []route.PlannedStop{
			{OrderID: o1, Operation: route.Pickup, Sequence: 1, Address: "depot"},
			{OrderID: o2, Operation: route.Pickup, Sequence: 1, Address: "depot"},
			stop(o1, route.Dropoff, 2),
			stop(o2, route.Dropoff, 3),
		}

		require.NoError(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1, o2}))
	})

	t.Run("should reject dropoff sharing the position of its pickup", func(t *testing.T) {
		plan := []route.PlannedStop{stop(o1, route.Pickup, 1), stop(o1, route.Dropoff, 1)}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationMissingPickup)
	})

	t.Run("should compare times with earlier positions only", func(t *testing.T) {
		grouped := []route.PlannedStop{
			timedStop(o1, route.Pickup, 1, at(10, 10)),
			timedStop(o2, route.Pickup, 1, at(10, 8)),
			timedStop(o1, route.Dropoff, 2, at(10, 11)),
			timedStop(o2, route.Dropoff, 3, at(10, 12)),
		}
		require.NoError(t, validator.Validate(grouped, routeEnd, []kernel.UUID{o1, o2}))

		grouped[3] = timedStop(o2, route.Dropoff, 2, at(10, 9))
		requireViolation(t, validator.Validate(grouped, routeEnd, []kernel.UUID{o1, o2}), services.ViolationNonMonotonic)
	})

	t.Run("should accept picking an order up again", func(t *testing.T) {
		plan := []route.PlannedStop{stop(o1, route.Pickup, 1), stop(o1, route.Pickup, 2), stop(o1, route.Dropoff, 3)}

		require.NoError(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}))
	})

	t.Run("should check dropoff against the latest pickup", func(t *testing.T) {
		plan := []route.PlannedStop{
			timedStop(o1, route.Pickup, 1, at(10, 8)),
			timedStop(o1, route.Pickup, 2, at(10, 10)),
			timedStop(o1, route.Dropoff, 3, at(10, 9)),
		}

		seqErr := requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationOutOfOrder)
		assert.Equal(t, 3, seqErr.Sequence)
	})

	t.Run("should accept redelivery after a second pickup", func(t *testing.T) {
		plan := []route.PlannedStop{
			stop(o1, route.Pickup, 1),
			stop(o1, route.Dropoff, 2),
			stop(o1, route.Pickup, 3),
			stop(o1, route.Dropoff, 4),
		}

		require.NoError(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}))
	})

	t.Run("should reject dropoff of an order no longer on board", func(t *testing.T) {
		plan := []route.PlannedStop{stop(o1, route.Pickup, 1), stop(o1, route.Dropoff, 2), stop(o1, route.Dropoff, 3)}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationDuplicateStop)
	})

	t.Run("should reject order left on board after a second pickup", func(t *testing.T) {
		plan := []route.PlannedStop{stop(o1, route.Pickup, 1), stop(o1, route.Dropoff, 2), stop(o1, route.Pickup, 3)}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationMissingDropoff)
	})

	t.Run("should reject stop of foreign order", func(t *testing.T) {
		plan := []route.PlannedStop{stop(o1, route.Pickup, 1), stop(o1, route.Dropoff, 2), stop(o2, route.Pickup, 3)}

		requireViolation(t, validator.Validate(plan, routeEnd, []kernel.UUID{o1}), services.ViolationUnknownOrder)
	})
}
