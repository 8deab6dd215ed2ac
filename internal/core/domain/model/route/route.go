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

var ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute constructor")

// Route is the aggregate root that books a vehicle and a driver for a time window
// and owns the stops visited during that window.
//
// Invariants:
//   - window end is not before start
//   - stops are kept sorted by sequence, Dropoffs first inside a shared sequence
//   - plan and schedule changes are allowed only while Planned
//   - only the assigned driver starts and finishes the route
//   - a route finishes only when every stop is Delivered
//
// Feasibility across aggregates (overlaps, capacity, sequencing) is checked by the
// domain services before a plan reaches the route.
type Route struct {
	id         kernel.UUID
	window     kernel.TimeWindow
	vehicleID  kernel.UUID
	driverID   kernel.UUID
	status     Status
	stops      []*Stop
	notes      string
	startedAt  *time.Time
	finishedAt *time.Time

	// version is the persisted revision used for optimistic concurrency
	version int

	events []Event
	guard  guard.ConstructorGuard
}

// NewRoute creates a Planned route with one Pending stop per plan entry.
//
// Parameters:
//   - id: unique identifier
//   - window: scheduled [start, end)
//   - vehicleID, driverID: booked resources
//   - notes: free text for the driver
//   - plan: stop plan, already validated by the sequencing and capacity checks
//   - now: creation instant recorded on the RouteCreated event
//
// Example:
//
//	r, err := route.NewRoute(kernel.NewUUID(), window, vehicleID, driverID, "", plan, time.Now())
func NewRoute(
	id kernel.UUID,
	window kernel.TimeWindow,
	vehicleID kernel.UUID,
	driverID kernel.UUID,
	notes string,
	plan []PlannedStop,
	now time.Time,
) (*Route, error) {
	stops, err := stopsFromPlan(plan)
	if err != nil {
		return nil, err
	}

	r, err := RestoreRoute(id, window, vehicleID, driverID, notes, Planned, stops, nil, nil, 1)
	if err != nil {
		return nil, err
	}

	r.record(EventRouteCreated, nil, nil, now)
	return r, nil
}

// RestoreRoute rebuilds a route loaded from storage.
func RestoreRoute(
	id kernel.UUID,
	window kernel.TimeWindow,
	vehicleID kernel.UUID,
	driverID kernel.UUID,
	notes string,
	status Status,
	stops []*Stop,
	startedAt *time.Time,
	finishedAt *time.Time,
	version int,
) (*Route, error) {
	var stopsErr error
	for _, s := range stops {
		stopsErr = errors.Join(stopsErr, s.Validate())
	}

	if err := errors.Join(
		id.Validate(),
		window.Validate(),
		vehicleID.Validate(),
		driverID.Validate(),
		status.Validate(),
		stopsErr,
	); err != nil {
		return nil, err
	}

	r := &Route{
		id:         id,
		window:     window,
		vehicleID:  vehicleID,
		driverID:   driverID,
		status:     status,
		stops:      slices.Clone(stops),
		notes:      strings.TrimSpace(notes),
		startedAt:  utcPtr(startedAt),
		finishedAt: utcPtr(finishedAt),
		version:    version,
		guard:      guard.NewConstructorGuard(),
	}
	r.sortStops()
	return r, nil
}

func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

func (r *Route) ID() kernel.UUID {
	return r.id
}

func (r *Route) Window() kernel.TimeWindow {
	return r.window
}

func (r *Route) VehicleID() kernel.UUID {
	return r.vehicleID
}

func (r *Route) DriverID() kernel.UUID {
	return r.driverID
}

func (r *Route) Status() Status {
	return r.status
}

func (r *Route) Notes() string {
	return r.notes
}

func (r *Route) StartedAt() *time.Time {
	return utcPtr(r.startedAt)
}

func (r *Route) FinishedAt() *time.Time {
	return utcPtr(r.finishedAt)
}

// Version is the revision the route was loaded with.
func (r *Route) Version() int {
	return r.version
}

// Stops returns the stops sorted by sequence.
func (r *Route) Stops() []*Stop {
	return slices.Clone(r.stops)
}

// Plan returns the current stops as plan entries, sorted by sequence.
func (r *Route) Plan() []PlannedStop {
	plan := make([]PlannedStop, 0, len(r.stops))
	for _, s := range r.stops {
		plan = append(plan, s.Planned())
	}
	return plan
}

// OrderIDs returns the distinct orders visited by the route.
func (r *Route) OrderIDs() []kernel.UUID {
	return OrderIDs(r.Plan())
}

// Stop looks a stop up by identifier.
func (r *Route) Stop(stopID kernel.UUID) (*Stop, error) {
	for _, s := range r.stops {
		if s.id.IsEqual(stopID) {
			return s, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("stop", stopID)
}

// PendingStops counts stops that are not Delivered.
func (r *Route) PendingStops() int {
	pending := 0
	for _, s := range r.stops {
		if s.IsOpen() {
			pending++
		}
	}
	return pending
}

// HasOpenStopsFor reports whether any stop of the order other than exceptStopID is
// not yet Delivered.
func (r *Route) HasOpenStopsFor(orderID, exceptStopID kernel.UUID) bool {
	for _, s := range r.stops {
		if s.orderID.IsEqual(orderID) && !s.id.IsEqual(exceptStopID) && s.IsOpen() {
			return true
		}
	}
	return false
}

// ExpectVersion rejects a change prepared against another revision of the route.
func (r *Route) ExpectVersion(expected int) error {
	if expected != r.version {
		return errs.NewStateConflictErrorWithCause(
			"route", r.id, "route was modified concurrently",
			errs.NewVersionIsInvalidErrorWithCause("version", fmt.Errorf("expected %d, current %d", expected, r.version)),
		)
	}
	return nil
}

// Reschedule changes the window, the booked resources and the notes of a Planned route.
func (r *Route) Reschedule(window kernel.TimeWindow, vehicleID, driverID kernel.UUID, notes string, now time.Time) error {
	if err := r.ensurePlanned("update"); err != nil {
		return err
	}
	if err := errors.Join(window.Validate(), vehicleID.Validate(), driverID.Validate()); err != nil {
		return err
	}

	r.window = window
	r.vehicleID = vehicleID
	r.driverID = driverID
	r.notes = strings.TrimSpace(notes)
	r.record(EventRouteUpdated, nil, nil, now)
	return nil
}

// ReplacePlan swaps the whole stop plan of a Planned route. The old stops are dropped.
func (r *Route) ReplacePlan(plan []PlannedStop, now time.Time) error {
	if err := r.ensurePlanned("replace the plan of"); err != nil {
		return err
	}

	stops, err := stopsFromPlan(plan)
	if err != nil {
		return err
	}

	r.stops = stops
	r.sortStops()
	r.record(EventRouteUpdated, nil, nil, now)
	return nil
}

// Reorder assigns new sequence numbers to existing stops of a Planned route.
// Stops missing from sequences keep their number.
func (r *Route) Reorder(sequences map[kernel.UUID]int, now time.Time) error {
	if err := r.ensurePlanned("reorder"); err != nil {
		return err
	}

	for stopID, sequence := range sequences {
		if _, err := r.Stop(stopID); err != nil {
			return err
		}
		if sequence < 1 {
			return errs.NewValueIsOutOfRangeError("sequence", sequence, 1, "unbounded")
		}
	}

	for _, s := range r.stops {
		if sequence, ok := sequences[s.id]; ok {
			s.sequence = sequence
		}
	}
	r.sortStops()
	r.record(EventRouteUpdated, nil, nil, now)
	return nil
}

// Start begins a Planned route on behalf of its driver.
//
// Returns:
//   - *errs.StateConflictError when the caller is not the assigned driver or the
//     route is not Planned
func (r *Route) Start(callerDriverID kernel.UUID, now time.Time) error {
	if err := r.ensureDriver(callerDriverID, "start"); err != nil {
		return err
	}

	next, err := r.status.Start()
	if err != nil {
		return errs.NewStateConflictErrorWithCause("route", r.id, fmt.Sprintf("cannot start a %s route", r.status), err)
	}

	startedAt := now.UTC()
	r.status = next
	r.startedAt = &startedAt
	r.record(EventRouteStarted, nil, nil, now)
	return nil
}

// Finish completes an InProgress route once every stop is Delivered.
//
// Returns:
//   - *errs.StateConflictError with Pending set when stops are still open
//   - *errs.StateConflictError when the caller is not the assigned driver or the
//     route is not InProgress
func (r *Route) Finish(callerDriverID kernel.UUID, now time.Time) error {
	if err := r.ensureDriver(callerDriverID, "finish"); err != nil {
		return err
	}

	next, err := r.status.Finish()
	if err != nil {
		return errs.NewStateConflictErrorWithCause("route", r.id, fmt.Sprintf("cannot finish a %s route", r.status), err)
	}
	if pending := r.PendingStops(); pending > 0 {
		return errs.NewPendingStopsError("route", r.id, pending)
	}

	finishedAt := now.UTC()
	r.status = next
	r.finishedAt = &finishedAt
	r.record(EventRouteFinished, nil, nil, now)
	return nil
}

// Cancel stops a Planned or InProgress route. Releasing its orders is up to the caller.
func (r *Route) Cancel(now time.Time) error {
	next, err := r.status.Cancel()
	if err != nil {
		return errs.NewStateConflictErrorWithCause("route", r.id, fmt.Sprintf("cannot cancel a %s route", r.status), err)
	}

	finishedAt := now.UTC()
	r.status = next
	r.finishedAt = &finishedAt
	r.record(EventRouteCancelled, nil, nil, now)
	return nil
}

// MarkDeleted records the deletion of the route for event publishing.
func (r *Route) MarkDeleted(now time.Time) {
	r.record(EventRouteDeleted, nil, nil, now)
}

// MarkStopEnRoute records that the driver is heading to a stop.
func (r *Route) MarkStopEnRoute(stopID kernel.UUID, now time.Time) (*Stop, error) {
	s, err := r.runningStop(stopID, "depart to a stop of")
	if err != nil {
		return nil, err
	}
	if err = s.depart(); err != nil {
		return nil, err
	}

	r.record(EventStopEnRoute, &s.id, &s.orderID, now)
	return s, nil
}

// CompleteStop marks a stop Delivered and attaches delivery proofs.
// Order side effects are decided by the caller with HasOpenStopsFor.
func (r *Route) CompleteStop(stopID kernel.UUID, proofRefs []string, now time.Time) (*Stop, error) {
	s, err := r.runningStop(stopID, "complete a stop of")
	if err != nil {
		return nil, err
	}
	if err = s.complete(proofRefs, now); err != nil {
		return nil, err
	}

	r.record(EventStopCompleted, &s.id, &s.orderID, now)
	return s, nil
}

// ReportStopIncident marks a stop as failed. The rest of the route goes on.
func (r *Route) ReportStopIncident(stopID kernel.UUID, now time.Time) (*Stop, error) {
	s, err := r.Stop(stopID)
	if err != nil {
		return nil, err
	}
	if !r.status.IsActive() {
		return nil, errs.NewStateConflictError("route", r.id, fmt.Sprintf("cannot report an incident on a %s route", r.status))
	}
	if err = s.reportIncident(); err != nil {
		return nil, err
	}

	r.record(EventStopIncident, &s.id, &s.orderID, now)
	return s, nil
}

// Events returns the events recorded since the route was loaded.
func (r *Route) Events() []Event {
	return slices.Clone(r.events)
}

// ClearEvents drops recorded events once they were published.
func (r *Route) ClearEvents() {
	r.events = nil
}

func (r *Route) runningStop(stopID kernel.UUID, action string) (*Stop, error) {
	s, err := r.Stop(stopID)
	if err != nil {
		return nil, err
	}
	if r.status != InProgress {
		return nil, errs.NewStateConflictError("route", r.id, fmt.Sprintf("cannot %s a %s route", action, r.status))
	}
	return s, nil
}

func (r *Route) ensurePlanned(action string) error {
	if r.status != Planned {
		return errs.NewStateConflictError("route", r.id, fmt.Sprintf("cannot %s a %s route", action, r.status))
	}
	return nil
}

func (r *Route) ensureDriver(callerDriverID kernel.UUID, action string) error {
	if !r.driverID.IsEqual(callerDriverID) {
		return errs.NewStateConflictError("route", r.id, fmt.Sprintf("only the assigned driver can %s the route", action))
	}
	return nil
}

func (r *Route) sortStops() {
	slices.SortStableFunc(r.stops, func(a, b *Stop) int {
		return comparePosition(a.sequence, a.operation, b.sequence, b.operation)
	})
}

func (r *Route) record(eventType EventType, stopID, orderID *kernel.UUID, now time.Time) {
	if eventType == EventRouteUpdated && len(r.events) > 0 && r.events[len(r.events)-1].Type == EventRouteUpdated {
		return
	}
	event := Event{
		Type:       eventType,
		RouteID:    r.id,
		OccurredAt: now.UTC(),
	}
	if stopID != nil {
		id := *stopID
		event.StopID = &id
	}
	if orderID != nil {
		id := *orderID
		event.OrderID = &id
	}
	r.events = append(r.events, event)
}

func stopsFromPlan(plan []PlannedStop) ([]*Stop, error) {
	if len(plan) == 0 {
		return nil, errs.NewValueIsRequiredError("stops")
	}

	stops := make([]*Stop, 0, len(plan))
	var err error
	for _, p := range plan {
		s, stopErr := NewStop(kernel.NewUUID(), p)
		if stopErr != nil {
			err = errors.Join(err, stopErr)
			continue
		}
		stops = append(stops, s)
	}
	if err != nil {
		return nil, err
	}
	return stops, nil
}
