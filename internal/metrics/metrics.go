package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database metrics
	dbQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoutindexer_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"table", "operation"},
	)

	dbErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoutindexer_db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"table", "operation"},
	)

	// Indexing metrics
	LastIndexedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shoutindexer_last_indexed_block",
			Help: "The checkpoint block number, advanced after a durable catch-up pass",
		},
		[]string{"chain_id"},
	)

	EventsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoutindexer_events_indexed_total",
			Help: "Total number of events written to storage by kind",
		},
		[]string{"kind"},
	)

	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoutindexer_events_skipped_total",
			Help: "Total number of logs skipped during decoding by reason",
		},
		[]string{"reason"},
	)

	PassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shoutindexer_catchup_pass_duration_seconds",
			Help:    "Duration of catch-up passes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// System metrics
	goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shoutindexer_goroutines",
			Help: "Number of goroutines",
		},
	)

	memoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shoutindexer_memory_bytes",
			Help: "Current memory usage in bytes",
		},
	)
)

func DBQueryInc(table, operation string) {
	dbQueries.WithLabelValues(table, operation).Inc()
}

func DBErrorInc(table, operation string) {
	dbErrors.WithLabelValues(table, operation).Inc()
}

// UpdateSystemMetrics refreshes the runtime gauges.
func UpdateSystemMetrics() {
	goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memoryUsage.Set(float64(m.Alloc))
}

// SystemMetricsInterval is how often the metrics server samples runtime state.
const SystemMetricsInterval = 15 * time.Second
