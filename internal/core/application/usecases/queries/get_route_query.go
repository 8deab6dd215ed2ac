package queries

import (
	"errors"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrGetRouteQueryIsNotConstructed = errors.New("GetRouteQuery must be created via NewGetRouteQuery constructor")

// GetRouteQuery reads one route with its stops.
//
// Example:
//
//	query, err := queries.NewGetRouteQuery(routeID)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetRouteQuery struct {
	routeID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetRouteQuery(routeID kernel.UUID) (GetRouteQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetRouteQuery{}, err
	}
	return GetRouteQuery{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRouteQuery) RouteID() kernel.UUID {
	return q.routeID
}

func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

// RouteView is the cached projection of a route. Statuses and operations are
// rendered by name and timestamps are UTC.
type RouteView struct {
	ID          kernel.UUID `json:"id"`
	VehicleID   kernel.UUID `json:"vehicleId"`
	DriverID    kernel.UUID `json:"driverId"`
	WindowStart time.Time   `json:"windowStart"`
	WindowEnd   time.Time   `json:"windowEnd"`
	Status      string      `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
	FinishedAt  *time.Time  `json:"finishedAt,omitempty"`
	Version     int         `json:"version"`
	Stops       []StopView  `json:"stops"`
}

type StopView struct {
	ID          kernel.UUID `json:"id"`
	OrderID     kernel.UUID `json:"orderId"`
	Operation   string      `json:"operation"`
	Sequence    int         `json:"sequence"`
	Address     string      `json:"address"`
	PlannedAt   *time.Time  `json:"plannedAt,omitempty"`
	Status      string      `json:"status"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	ProofRefs   []string    `json:"proofRefs,omitempty"`
}
