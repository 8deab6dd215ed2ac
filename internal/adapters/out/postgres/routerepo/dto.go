// Package routerepo persists route aggregates and their stops with GORM.
package routerepo

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"

	"github.com/google/uuid"
)

// RouteDTO is the routes table row. Stops live in route_stops and are removed
// together with their route.
type RouteDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	VehicleID   uuid.UUID `gorm:"type:uuid;not null;index:idx_routes_vehicle_window,priority:1"`
	DriverID    uuid.UUID `gorm:"type:uuid;not null;index:idx_routes_driver_window,priority:1"`
	WindowStart time.Time `gorm:"not null;index:idx_routes_vehicle_window,priority:2;index:idx_routes_driver_window,priority:2;index"`
	WindowEnd   time.Time `gorm:"not null"`
	Status      int       `gorm:"not null;index"`
	Notes       string
	StartedAt   *time.Time
	FinishedAt  *time.Time
	Version     int       `gorm:"not null"`
	Stops       []StopDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

func (RouteDTO) TableName() string {
	return "routes"
}

// StopDTO is the route_stops table row.
type StopDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RouteID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Operation   int       `gorm:"not null"`
	Sequence    int       `gorm:"not null"`
	Address     string    `gorm:"not null"`
	PlannedAt   *time.Time
	Status      int `gorm:"not null"`
	CompletedAt *time.Time
	ProofRefs   []string `gorm:"type:jsonb;serializer:json"`
}

func (StopDTO) TableName() string {
	return "route_stops"
}

func fromDomain(r *route.Route) RouteDTO {
	routeID := r.ID().Bytes()

	stops := make([]StopDTO, 0, len(r.Stops()))
	for _, s := range r.Stops() {
		stops = append(stops, StopDTO{
			ID:          s.ID().Bytes(),
			RouteID:     routeID,
			OrderID:     s.OrderID().Bytes(),
			Operation:   int(s.Operation()),
			Sequence:    s.Sequence(),
			Address:     s.Address(),
			PlannedAt:   s.PlannedAt(),
			Status:      int(s.Status()),
			CompletedAt: s.CompletedAt(),
			ProofRefs:   s.ProofRefs(),
		})
	}

	return RouteDTO{
		ID:          routeID,
		VehicleID:   r.VehicleID().Bytes(),
		DriverID:    r.DriverID().Bytes(),
		WindowStart: r.Window().Start(),
		WindowEnd:   r.Window().End(),
		Status:      int(r.Status()),
		Notes:       r.Notes(),
		StartedAt:   r.StartedAt(),
		FinishedAt:  r.FinishedAt(),
		Version:     r.Version(),
		Stops:       stops,
	}
}

func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	vehicleID, err := kernel.UUIDFromBytes(dto.VehicleID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}
	window, err := kernel.NewTimeWindow(dto.WindowStart, dto.WindowEnd)
	if err != nil {
		return nil, err
	}

	stops := make([]*route.Stop, 0, len(dto.Stops))
	for _, s := range dto.Stops {
		stop, stopErr := stopToDomain(s)
		if stopErr != nil {
			return nil, stopErr
		}
		stops = append(stops, stop)
	}

	return route.RestoreRoute(
		id,
		window,
		vehicleID,
		driverID,
		dto.Notes,
		route.Status(dto.Status),
		stops,
		dto.StartedAt,
		dto.FinishedAt,
		dto.Version,
	)
}

func stopToDomain(dto StopDTO) (*route.Stop, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return route.RestoreStop(
		id,
		route.PlannedStop{
			OrderID:   orderID,
			Operation: route.Operation(dto.Operation),
			Sequence:  dto.Sequence,
			Address:   dto.Address,
			PlannedAt: dto.PlannedAt,
		},
		route.StopStatus(dto.Status),
		dto.CompletedAt,
		dto.ProofRefs,
	)
}

// bookingDTO is the projection read by the availability queries.
type bookingDTO struct {
	ID          uuid.UUID
	WindowStart time.Time
	WindowEnd   time.Time
	Status      int
}

func (b bookingDTO) toDomain() (route.Booking, error) {
	id, err := kernel.UUIDFromBytes(b.ID[:])
	if err != nil {
		return route.Booking{}, err
	}
	window, err := kernel.NewTimeWindow(b.WindowStart, b.WindowEnd)
	if err != nil {
		return route.Booking{}, err
	}
	return route.Booking{RouteID: id, Window: window, Status: route.Status(b.Status)}, nil
}
