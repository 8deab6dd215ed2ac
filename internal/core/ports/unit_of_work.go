package ports

import (
	"context"
)

// UnitOfWorkFactory hands out a fresh UnitOfWork per mutation.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is the transaction boundary of one route mutation. Every
// feasibility read and every write of the mutation goes through the
// repositories it returns, so a failed validation leaves no trace.
type UnitOfWork interface {
	// Begin opens the transaction.
	Begin(ctx context.Context) error

	// Commit fails when no transaction is open or the database rejects it.
	Commit(ctx context.Context) error

	// Rollback discards the open transaction. After Commit it returns an
	// error that deferred callers ignore.
	Rollback(ctx context.Context) error

	RouteRepository() RouteRepository
	OrderRepository() OrderRepository
	VehicleRepository() VehicleRepository
	DriverRepository() DriverRepository
	IncidentRepository() IncidentRepository
}
