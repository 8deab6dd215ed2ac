package queries

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrListRoutesQueryIsNotConstructed = errors.New("ListRoutesQuery must be created via NewListRoutesQuery constructor")

// RouteFilter narrows a route listing. Zero fields do not filter.
type RouteFilter struct {
	// Date selects routes whose window intersects that UTC calendar day
	Date *time.Time

	Status    *route.Status
	DriverID  *kernel.UUID
	VehicleID *kernel.UUID

	Offset int
	Limit  int
}

// ListRoutesQuery pages through routes ordered by window start.
//
// Example:
//
//	status := route.Planned
//	query, err := queries.NewListRoutesQuery(queries.RouteFilter{Status: &status, Limit: 50})
type ListRoutesQuery struct {
	filter RouteFilter
	guard  guard.ConstructorGuard
}

// NewListRoutesQuery normalises the filter: a zero Limit becomes DefaultListLimit
// and Date is truncated to its UTC day.
//
// Returns:
//   - *errs.ValueIsOutOfRangeError for a negative offset or a limit above MaxListLimit
//   - the validation error of an unknown status or a zero id
func NewListRoutesQuery(filter RouteFilter) (ListRoutesQuery, error) {
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}

	var limitErr, offsetErr, statusErr, driverErr, vehicleErr error
	if filter.Limit < 1 || filter.Limit > MaxListLimit {
		limitErr = errs.NewValueIsOutOfRangeError("limit", filter.Limit, 1, MaxListLimit)
	}
	if filter.Offset < 0 {
		offsetErr = errs.NewValueIsOutOfRangeError("offset", filter.Offset, 0, "unbounded")
	}
	if filter.Status != nil {
		statusErr = filter.Status.Validate()
	}
	if filter.DriverID != nil {
		driverErr = filter.DriverID.Validate()
	}
	if filter.VehicleID != nil {
		vehicleErr = filter.VehicleID.Validate()
	}
	if err := errors.Join(limitErr, offsetErr, statusErr, driverErr, vehicleErr); err != nil {
		return ListRoutesQuery{}, err
	}

	if filter.Date != nil {
		day := filter.Date.UTC().Truncate(24 * time.Hour)
		filter.Date = &day
	}

	return ListRoutesQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

func (q ListRoutesQuery) Filter() RouteFilter {
	return q.filter
}

func (q ListRoutesQuery) Validate() error {
	return q.guard.Validate(ErrListRoutesQueryIsNotConstructed)
}

// CacheKey identifies the page in the projection cache. Every key shares
// ports.RouteListKeyPrefix so that route mutations can drop them all.
func (q ListRoutesQuery) CacheKey() string {
	parts := make([]string, 0, 6)
	if q.filter.Date != nil {
		parts = append(parts, "date="+q.filter.Date.Format(time.DateOnly))
	}
	if q.filter.Status != nil {
		parts = append(parts, "status="+q.filter.Status.String())
	}
	if q.filter.DriverID != nil {
		parts = append(parts, "driver="+q.filter.DriverID.String())
	}
	if q.filter.VehicleID != nil {
		parts = append(parts, "vehicle="+q.filter.VehicleID.String())
	}
	parts = append(parts, fmt.Sprintf("offset=%d", q.filter.Offset), fmt.Sprintf("limit=%d", q.filter.Limit))
	return ports.RouteListKeyPrefix + strings.Join(parts, "|")
}

// RouteSummary is one row of a route listing.
type RouteSummary struct {
	ID           kernel.UUID `json:"id"`
	VehicleID    kernel.UUID `json:"vehicleId"`
	DriverID     kernel.UUID `json:"driverId"`
	WindowStart  time.Time   `json:"windowStart"`
	WindowEnd    time.Time   `json:"windowEnd"`
	Status       string      `json:"status"`
	Version      int         `json:"version"`
	StopCount    int         `json:"stopCount"`
	PendingStops int         `json:"pendingStops"`
}

type ListRoutesResponse struct {
	Items  []RouteSummary `json:"items"`
	Total  int64          `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}
