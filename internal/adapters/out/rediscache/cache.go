// Package rediscache keeps query projections in Redis and drops them when routes
// change.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout    = 2 * time.Second
	defaultMaxPending = 1024
	scanBatch         = 100
)

// Options tune the invalidation behaviour. Zero values select the defaults.
type Options struct {
	// Timeout bounds one background invalidation
	Timeout time.Duration

	// MaxPending caps the retry queue; failures beyond it are dropped and left to
	// expire with their TTL
	MaxPending int
}

// Cache implements ports.ProjectionCache and ports.CacheInvalidator.
//
// Invalidation runs in the background on a context detached from the request.
// Failed invalidations are logged, counted and queued; RetryPending replays them.
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	cache := rediscache.New(client, logger, rediscache.Options{})
//	defer cache.Wait()
type Cache struct {
	client     redis.UniversalClient
	logger     *slog.Logger
	timeout    time.Duration
	maxPending int

	mu      sync.Mutex
	pending map[kernel.UUID]map[kernel.UUID]struct{}

	inflight sync.WaitGroup
}

func New(client redis.UniversalClient, logger *slog.Logger, opts Options) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxPending <= 0 {
		opts.MaxPending = defaultMaxPending
	}
	return &Cache{
		client:     client,
		logger:     logger.With("component", "redis_cache"),
		timeout:    opts.Timeout,
		maxPending: opts.MaxPending,
		pending:    make(map[kernel.UUID]map[kernel.UUID]struct{}),
	}
}

// Get reports ok=false for a missing key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// InvalidateRoute drops the route projection, every route listing and the order
// projections in the background. It never blocks the caller.
func (c *Cache) InvalidateRoute(ctx context.Context, routeID kernel.UUID, orderIDs []kernel.UUID) {
	detached := context.WithoutCancel(ctx)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		ctx, cancel := context.WithTimeout(detached, c.timeout)
		defer cancel()

		if err := c.invalidate(ctx, routeID, orderIDs); err != nil {
			metrics.RecordCacheInvalidationFailure()
			c.logger.WarnContext(ctx, "cache invalidation failed, queued for retry",
				"route_id", routeID.String(),
				"orders", len(orderIDs),
				"error", err,
			)
			c.enqueue(routeID, orderIDs)
		}
	}()
}

// RetryPending replays queued invalidations. Entries that fail again stay queued.
// It returns how many entries are still pending.
func (c *Cache) RetryPending(ctx context.Context) (int, error) {
	c.mu.Lock()
	batch := c.pending
	c.pending = make(map[kernel.UUID]map[kernel.UUID]struct{})
	c.mu.Unlock()

	var errs error
	for routeID, orders := range batch {
		orderIDs := make([]kernel.UUID, 0, len(orders))
		for id := range orders {
			orderIDs = append(orderIDs, id)
		}

		if err := c.invalidate(ctx, routeID, orderIDs); err != nil {
			errs = errors.Join(errs, err)
			c.enqueue(routeID, orderIDs)
		}
	}

	remaining := c.PendingCount()
	metrics.SetCacheInvalidationPending(remaining)
	return remaining, errs
}

func (c *Cache) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Wait blocks until background invalidations finish.
func (c *Cache) Wait() {
	c.inflight.Wait()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) invalidate(ctx context.Context, routeID kernel.UUID, orderIDs []kernel.UUID) error {
	keys := make([]string, 0, len(orderIDs)+1)
	keys = append(keys, ports.RouteItemKey(routeID))
	for _, id := range orderIDs {
		keys = append(keys, ports.OrderItemKey(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return c.deletePattern(ctx, ports.RouteListKeyPrefix+"*")
}

// deletePattern removes keys matching pattern with SCAN so Redis is never blocked
// by KEYS.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	batch := make([]string, 0, scanBatch)
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del %s: %w", pattern, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}

	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", pattern, err)
		}
	}
	return nil
}

func (c *Cache) enqueue(routeID kernel.UUID, orderIDs []kernel.UUID) {
	c.mu.Lock()
	orders, ok := c.pending[routeID]
	if !ok {
		if len(c.pending) >= c.maxPending {
			c.mu.Unlock()
			c.logger.Error("cache invalidation retry queue is full, dropping entry",
				"route_id", routeID.String())
			return
		}
		orders = make(map[kernel.UUID]struct{}, len(orderIDs))
		c.pending[routeID] = orders
	}
	for _, id := range orderIDs {
		orders[id] = struct{}{}
	}
	size := len(c.pending)
	c.mu.Unlock()

	metrics.SetCacheInvalidationPending(size)
}
