package ports

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Reads lock the returned rows until the transaction ends.
type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error

	Update(ctx context.Context, aggregate *order.Order) error

	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetMany returns the orders in the order of ids. The first missing id yields
	// *errs.ObjectNotFoundError.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)
}
