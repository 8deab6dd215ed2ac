package commands

import (
	"errors"

	"fleet/internal/pkg/guard"
)

var ErrSyncVehicleMaintenanceCommandIsNotConstructed = errors.New(
	"SyncVehicleMaintenanceCommand must be created via NewSyncVehicleMaintenanceCommand constructor",
)

// SyncVehicleMaintenanceCommand aligns every vehicle status with its maintenance
// records. It takes no parameters.
type SyncVehicleMaintenanceCommand struct {
	guard guard.ConstructorGuard
}

func NewSyncVehicleMaintenanceCommand() SyncVehicleMaintenanceCommand {
	return SyncVehicleMaintenanceCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c SyncVehicleMaintenanceCommand) Validate() error {
	return c.guard.Validate(ErrSyncVehicleMaintenanceCommandIsNotConstructed)
}
