package postgres

import (
	"fmt"

	"fleet/internal/adapters/out/postgres/driverrepo"
	"fleet/internal/adapters/out/postgres/incidentrepo"
	"fleet/internal/adapters/out/postgres/orderrepo"
	"fleet/internal/adapters/out/postgres/routerepo"
	"fleet/internal/adapters/out/postgres/vehiclerepo"

	"gorm.io/gorm"
)

// Models lists every table owned by the engine, parents first.
func Models() []any {
	return []any{
		&vehiclerepo.VehicleDTO{},
		&vehiclerepo.MaintenanceDTO{},
		&driverrepo.DriverDTO{},
		&orderrepo.OrderDTO{},
		&routerepo.RouteDTO{},
		&routerepo.StopDTO{},
		&incidentrepo.IncidentDTO{},
	}
}

// Migrate creates or alters the schema to match Models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
