package kernel

import (
	"errors"
	"fmt"
	"time"

	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

// ErrTimeWindowIsNotConstructed is returned when a TimeWindow bypassed NewTimeWindow.
var ErrTimeWindowIsNotConstructed = errors.New("TimeWindow must be created via NewTimeWindow constructor")

// TimeWindow is the scheduled interval of a route. It is treated as half-open,
// [start, end): a route ending at 10:00 and another starting at 10:00 do not overlap.
//
// Invariants:
//   - start is set
//   - end is not before start
//
// Example:
//
//	morning, _ := kernel.NewTimeWindow(
//	    time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
//	    time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
//	)
//	if morning.Overlaps(other) {
//	    // double booking
//	}
type TimeWindow struct {
	start time.Time
	end   time.Time
	guard guard.ConstructorGuard
}

// NewTimeWindow builds a window after checking that end is not before start.
// Both instants are normalised to UTC.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if start.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("start")
	}
	if end.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("end")
	}
	if end.Before(start) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause(
			"window",
			fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)),
		)
	}

	return TimeWindow{
		start: start.UTC(),
		end:   end.UTC(),
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Start returns the inclusive lower bound.
func (w TimeWindow) Start() time.Time {
	return w.start
}

// End returns the exclusive upper bound.
func (w TimeWindow) End() time.Time {
	return w.end
}

// Overlaps reports whether [a, b) and [c, d) intersect, that is a < d && c < b.
// The relation is symmetric.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.start.Before(other.end) && other.start.Before(w.end)
}

// IsEqual compares both bounds.
func (w TimeWindow) IsEqual(other TimeWindow) bool {
	return w.start.Equal(other.start) && w.end.Equal(other.end)
}

// Validate returns ErrTimeWindowIsNotConstructed for a zero-value window.
func (w TimeWindow) Validate() error {
	return w.guard.Validate(ErrTimeWindowIsNotConstructed)
}

// String renders the window as "[start, end)" in RFC 3339.
func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.start.Format(time.RFC3339), w.end.Format(time.RFC3339))
}
