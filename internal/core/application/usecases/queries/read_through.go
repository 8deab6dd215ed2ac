// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Handlers read projections straight from the database and keep them in the
// projection cache; commands invalidate the cached entries after commit.
package queries

import (
	"context"
	"encoding/json"
	"time"

	"fleet/internal/core/ports"
	"fleet/internal/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

// readThrough serves key from cache, or loads it once for all concurrent callers
// and stores the result for ttl. Cache failures degrade to a database read.
func readThrough[T any](
	ctx context.Context,
	flights *singleflight.Group,
	cache ports.ProjectionCache,
	ttl time.Duration,
	key string,
	load func(context.Context) (T, error),
) (T, error) {
	if cache != nil {
		if raw, ok, err := cache.Get(ctx, key); err == nil && ok {
			var cached T
			if err = json.Unmarshal(raw, &cached); err == nil {
				metrics.RecordCacheLookup(true)
				return cached, nil
			}
		}
		metrics.RecordCacheLookup(false)
	}

	value, err, _ := flights.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if cache != nil {
			if raw, marshalErr := json.Marshal(loaded); marshalErr == nil {
				_ = cache.Set(ctx, key, raw, ttl)
			}
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return value.(T), nil
}
