package ports

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"
)

// VehicleRepository defines the persistence contract for vehicles and the
// maintenance records attached to them.
type VehicleRepository interface {
	Add(ctx context.Context, aggregate *vehicle.Vehicle) error

	Update(ctx context.Context, aggregate *vehicle.Vehicle) error

	// Get loads a vehicle and locks its row until the transaction ends.
	Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error)

	GetAll(ctx context.Context) ([]*vehicle.Vehicle, error)

	// MaintenanceInProgress reports whether the vehicle has a maintenance record in
	// progress.
	MaintenanceInProgress(ctx context.Context, vehicleID kernel.UUID) (bool, error)

	// VehiclesInMaintenance returns the set of vehicles with a maintenance record in
	// progress.
	VehiclesInMaintenance(ctx context.Context) (map[kernel.UUID]struct{}, error)
}
