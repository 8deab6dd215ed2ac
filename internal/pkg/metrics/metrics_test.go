package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_IsIdempotent(t *testing.T) {
	registry := prometheus.NewRegistry()

	require.NotPanics(t, func() {
		Register(registry)
		Register(registry)
	})
}

func TestRecorders(t *testing.T) {
	t.Run("should count mutations per operation and outcome", func(t *testing.T) {
		before := testutil.ToFloat64(routeMutations.WithLabelValues("create", "ok"))

		RecordRouteMutation("create", "ok")

		assert.InDelta(t, before+1, testutil.ToFloat64(routeMutations.WithLabelValues("create", "ok")), 1e-9)
	})

	t.Run("should split cache lookups by result", func(t *testing.T) {
		hits := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
		misses := testutil.ToFloat64(cacheLookups.WithLabelValues("miss"))

		RecordCacheLookup(true)
		RecordCacheLookup(false)
		RecordCacheLookup(false)

		assert.InDelta(t, hits+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")), 1e-9)
		assert.InDelta(t, misses+2, testutil.ToFloat64(cacheLookups.WithLabelValues("miss")), 1e-9)
	})

	t.Run("should expose the retry queue size", func(t *testing.T) {
		SetCacheInvalidationPending(3)

		assert.InDelta(t, 3, testutil.ToFloat64(cacheInvalidationPending), 1e-9)
	})

	t.Run("should observe request durations", func(t *testing.T) {
		RecordRequestDuration("GET", "/api/v1/routes", 200, 15*time.Millisecond)

		assert.GreaterOrEqual(t, testutil.CollectAndCount(requestDuration), 1)
	})
}
