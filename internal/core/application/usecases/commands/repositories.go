// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// persistence, then post-commit cache invalidation and event publishing.
package commands

import (
	"context"

	"fleet/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	RouteRepoFactory interface {
		RouteRepository() ports.RouteRepository
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	VehicleRepoFactory interface {
		VehicleRepository() ports.VehicleRepository
	}

	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	IncidentRepoFactory interface {
		IncidentRepository() ports.IncidentRepository
	}

	// VehicleUoW manages transactions for vehicle-only operations such as the
	// maintenance sync.
	VehicleUoW interface {
		TxManager
		VehicleRepoFactory
	}

	// VehicleUoWFactory creates new vehicle unit of work instances.
	VehicleUoWFactory interface {
		Create() VehicleUoW
	}

	// UoW manages transactions across routes, orders and the resources they book.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   r, err := uow.RouteRepository().Get(ctx, routeID)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		RouteRepoFactory
		OrderRepoFactory
		VehicleRepoFactory
		DriverRepoFactory
		IncidentRepoFactory
	}

	// UoWFactory creates new unit of work instances for route operations.
	UoWFactory interface {
		Create() UoW
	}
)
