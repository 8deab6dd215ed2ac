package route

import "fleet/internal/core/domain/model/kernel"

// Booking is the part of an existing route the availability check needs: which
// window a vehicle or driver is already taken for.
type Booking struct {
	RouteID kernel.UUID
	Window  kernel.TimeWindow
	Status  Status
}

// BookingOf returns the booking held by a route.
func BookingOf(r *Route) Booking {
	return Booking{
		RouteID: r.ID(),
		Window:  r.Window(),
		Status:  r.Status(),
	}
}
