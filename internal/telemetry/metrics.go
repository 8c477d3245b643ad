package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PathTraces counts path computations by outcome (valid, invalid, unavailable)
	PathTraces = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netpath",
			Name:      "path_traces_total",
			Help:      "Total number of path computations",
		},
		[]string{"outcome"},
	)

	// PathHops observes the hop count of valid paths
	PathHops = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "netpath",
			Name:      "path_hops",
			Help:      "Number of hops in computed paths",
			Buckets:   prometheus.LinearBuckets(1, 1, 12),
		},
	)

	// Grades counts graded directions per verdict
	Grades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netpath",
			Name:      "grades_total",
			Help:      "Total number of graded throughput directions",
		},
		[]string{"direction", "grade"},
	)

	// InventoryFetchDuration observes controller round trips per collection
	InventoryFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "netpath",
			Name:      "inventory_fetch_seconds",
			Help:      "Latency of inventory fetches from the controller",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	// CacheLookups counts snapshot and server-position cache hits and misses
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netpath",
			Name:      "snapshot_cache_total",
			Help:      "Cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(PathTraces)
		prometheus.DefaultRegisterer.Register(PathHops)
		prometheus.DefaultRegisterer.Register(Grades)
		prometheus.DefaultRegisterer.Register(InventoryFetchDuration)
		prometheus.DefaultRegisterer.Register(CacheLookups)
	})
}
