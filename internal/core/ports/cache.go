package ports

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/kernel"
)

// CacheInvalidator drops cached projections after a committed mutation.
//
// Implementations must not block the caller and must not fail the mutation: the
// transaction is already committed when they run. Failures are logged and retried
// in the background; entry TTL bounds staleness in the meantime.
type CacheInvalidator interface {
	// InvalidateRoute drops the route item, every route list and the items of the
	// given orders.
	InvalidateRoute(ctx context.Context, routeID kernel.UUID, orderIDs []kernel.UUID)
}

// ProjectionCache stores serialized read models under string keys.
type ProjectionCache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Projection cache keys. Route lists are cached per filter under RouteListKeyPrefix.
const (
	RouteItemKeyPrefix = "routes:item:"
	RouteListKeyPrefix = "routes:list:"
	OrderItemKeyPrefix = "orders:item:"
)

func RouteItemKey(id kernel.UUID) string {
	return RouteItemKeyPrefix + id.String()
}

func OrderItemKey(id kernel.UUID) string {
	return OrderItemKeyPrefix + id.String()
}
