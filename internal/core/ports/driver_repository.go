package ports

import (
	"context"

	"fleet/internal/core/domain/model/driver"
	"fleet/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for drivers.
type DriverRepository interface {
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Get loads a driver and locks its row until the transaction ends.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)
}
