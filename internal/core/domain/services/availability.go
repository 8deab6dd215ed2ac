package services

import (
	"fmt"
	"time"

	"fleet/internal/core/domain/model/driver"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/pkg/errs"
)

// ResourceKind names the resource a route books.
type ResourceKind string

const (
	ResourceVehicle ResourceKind = "vehicle"
	ResourceDriver  ResourceKind = "driver"
)

// OverlapError reports that a resource is already booked by another route for an
// intersecting window.
type OverlapError struct {
	Resource           ResourceKind
	ResourceID         kernel.UUID
	ConflictingRouteID kernel.UUID
	ConflictingWindow  kernel.TimeWindow
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: %s %s is already booked by route %s for %s",
		errs.ErrOverlap, e.Resource, e.ResourceID, e.ConflictingRouteID, e.ConflictingWindow)
}

func (e *OverlapError) Unwrap() error {
	return errs.ErrOverlap
}

// AvailabilityValidator decides whether a vehicle or a driver can take a route for a
// window, given the bookings they already hold.
//
// Business rules:
//   - vehicles must be Active with no maintenance in progress
//   - drivers must be active with a licence valid on the later of today and the
//     route start date
//   - bookings of Cancelled routes and of the route being edited are ignored
//   - any other booking whose window overlaps the requested one is a conflict
//
// Example:
//
//	validator := services.NewAvailabilityValidator()
//	if err := validator.ValidateVehicle(v, false, window, bookings, nil); err != nil {
//	    return err // *errs.NotEligibleError or *services.OverlapError
//	}
type AvailabilityValidator struct{}

func NewAvailabilityValidator() AvailabilityValidator {
	return AvailabilityValidator{}
}

// ValidateVehicle checks eligibility first, then overlaps.
func (AvailabilityValidator) ValidateVehicle(
	v *vehicle.Vehicle,
	maintenanceInProgress bool,
	window kernel.TimeWindow,
	bookings []route.Booking,
	excludeRouteID *kernel.UUID,
) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := v.ValidateAssignable(maintenanceInProgress); err != nil {
		return err
	}
	return FindOverlap(ResourceVehicle, v.ID(), window, bookings, excludeRouteID)
}

// ValidateDriver checks eligibility first, then overlaps.
func (AvailabilityValidator) ValidateDriver(
	d *driver.Driver,
	today time.Time,
	window kernel.TimeWindow,
	bookings []route.Booking,
	excludeRouteID *kernel.UUID,
) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := d.ValidateAssignable(LicenseReferenceDate(today, window)); err != nil {
		return err
	}
	return FindOverlap(ResourceDriver, d.ID(), window, bookings, excludeRouteID)
}

// LicenseReferenceDate is the day a driver licence must still be valid on: the
// later of today and the route start.
func LicenseReferenceDate(today time.Time, window kernel.TimeWindow) time.Time {
	if window.Start().After(today) {
		return window.Start()
	}
	return today
}

// FindOverlap returns an *OverlapError for the first booking that conflicts with
// window, or nil.
func FindOverlap(
	kind ResourceKind,
	resourceID kernel.UUID,
	window kernel.TimeWindow,
	bookings []route.Booking,
	excludeRouteID *kernel.UUID,
) error {
	for _, b := range bookings {
		if b.Status == route.Cancelled {
			continue
		}
		if excludeRouteID != nil && b.RouteID.IsEqual(*excludeRouteID) {
			continue
		}
		if window.Overlaps(b.Window) {
			return &OverlapError{
				Resource:           kind,
				ResourceID:         resourceID,
				ConflictingRouteID: b.RouteID,
				ConflictingWindow:  b.Window,
			}
		}
	}
	return nil
}
