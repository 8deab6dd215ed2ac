// Package metrics holds the Prometheus collectors of the scheduling engine.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fleet"

var (
	routeMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_mutations_total",
			Help:      "Count of route mutations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Count of rejected requests by error kind.",
		},
		[]string{"kind"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Count of projection cache lookups by result.",
		},
		[]string{"result"},
	)
	cacheInvalidationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidation_failures_total",
			Help:      "Count of cache invalidations that failed and were queued for retry.",
		},
	)
	cacheInvalidationPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidation_pending",
			Help:      "Number of failed invalidations waiting for the retry job.",
		},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method, route template and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)
)

var registerMetrics sync.Once

// Register adds every collector to registerer. Later calls are no-ops.
func Register(registerer prometheus.Registerer) {
	registerMetrics.Do(func() {
		registerer.MustRegister(
			routeMutations,
			rejections,
			cacheLookups,
			cacheInvalidationFailures,
			cacheInvalidationPending,
			requestDuration,
		)
	})
}

// RecordRouteMutation counts a route command. outcome is "ok" or the error kind.
func RecordRouteMutation(operation, outcome string) {
	routeMutations.WithLabelValues(operation, outcome).Inc()
}

// RecordRejection counts a request refused with a domain error kind.
func RecordRejection(kind string) {
	rejections.WithLabelValues(kind).Inc()
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

func RecordCacheInvalidationFailure() {
	cacheInvalidationFailures.Inc()
}

// SetCacheInvalidationPending reports the size of the retry queue.
func SetCacheInvalidationPending(n int) {
	cacheInvalidationPending.Set(float64(n))
}

func RecordRequestDuration(method, route string, code int, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
