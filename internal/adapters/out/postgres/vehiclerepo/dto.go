// Package vehiclerepo persists vehicles and reads their maintenance records.
package vehiclerepo

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"

	"github.com/google/uuid"
)

// Maintenance record states as written by the workshop tooling. Only
// MaintenanceInProgress blocks a vehicle.
const (
	MaintenanceScheduled  = "Scheduled"
	MaintenanceInProgress = "InProgress"
	MaintenanceDone       = "Done"
)

type VehicleDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string
	Plate    string   `gorm:"not null;uniqueIndex"`
	Capacity *float64 `gorm:"column:capacity_kg"`
	Status   int      `gorm:"not null;index"`
}

func (VehicleDTO) TableName() string {
	return "vehicles"
}

// MaintenanceDTO is a maintenance record of a vehicle.
type MaintenanceDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	VehicleID   uuid.UUID `gorm:"type:uuid;not null;index:idx_vehicle_maintenances_vehicle_status,priority:1"`
	Status      string    `gorm:"not null;index:idx_vehicle_maintenances_vehicle_status,priority:2"`
	Description string
	StartedAt   *time.Time
	FinishedAt  *time.Time
}

func (MaintenanceDTO) TableName() string {
	return "vehicle_maintenances"
}

func fromDomain(v *vehicle.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:       v.ID().Bytes(),
		Name:     v.Name(),
		Plate:    v.Plate(),
		Capacity: v.Capacity(),
		Status:   int(v.Status()),
	}
}

func toDomain(dto VehicleDTO) (*vehicle.Vehicle, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return vehicle.RestoreVehicle(id, dto.Name, dto.Plate, dto.Capacity, vehicle.Status(dto.Status))
}
