// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Classification metrics
	TransactionsClassified *prometheus.CounterVec
	TransactionsDropped    prometheus.Counter
	BatchesProcessed       prometheus.Counter
	ParseErrors            prometheus.Counter

	// Query metrics
	QueriesServed *prometheus.CounterVec
	QueryLatency  *prometheus.HistogramVec

	// Window metrics
	WindowSize        prometheus.Gauge
	WindowPrunedTotal prometheus.Counter
	HighestSlotSeen   prometheus.Gauge

	// Ingestion metrics
	WSMessagesReceived prometheus.Counter
	WSReconnects       prometheus.Counter

	// Storage metrics
	SnapshotsWritten *prometheus.CounterVec
	ArchiveInserts   prometheus.Counter
	StorageErrors    *prometheus.CounterVec
	DBQueryDuration  *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulBatch prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "shield"
	}

	return &Metrics{
		// Classification metrics
		TransactionsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "transactions_classified_total",
			Help:      "Total number of transactions classified by protocol",
		}, []string{"protocol"}),
		TransactionsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "transactions_dropped_total",
			Help:      "Total number of transactions dropped as unmatched",
		}),
		BatchesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "batches_processed_total",
			Help:      "Total number of raw batches processed",
		}),
		ParseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "parse_errors_total",
			Help:      "Total number of raw batches rejected as malformed",
		}),

		// Query metrics
		QueriesServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "served_total",
			Help:      "Total number of analytics queries served by kind",
		}, []string{"kind"}),
		QueryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "latency_seconds",
			Help:      "Analytics query latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		// Window metrics
		WindowSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "window",
			Name:      "size",
			Help:      "Current number of transactions in the in-memory window",
		}),
		WindowPrunedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "window",
			Name:      "pruned_total",
			Help:      "Total number of transactions pruned from the window",
		}),
		HighestSlotSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "window",
			Name:      "highest_slot_seen",
			Help:      "Highest Solana slot number seen",
		}),

		// Ingestion metrics
		WSMessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "ws_messages_received_total",
			Help:      "Total number of WebSocket messages received",
		}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnects",
		}),

		// Storage metrics
		SnapshotsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "snapshots_written_total",
			Help:      "Total number of metric snapshots written by metric",
		}, []string{"metric"}),
		ArchiveInserts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "archive_inserts_total",
			Help:      "Total number of transactions archived",
		}),
		StorageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of storage errors by database",
		}, []string{"database"}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulBatch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_batch_timestamp",
			Help:      "Unix timestamp of the last successfully processed batch",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordClassified increments the classified counter for a protocol.
func RecordClassified(protocol string) {
	DefaultMetrics.TransactionsClassified.WithLabelValues(protocol).Inc()
}

// RecordDropped adds to the dropped transactions counter.
func RecordDropped(n int) {
	DefaultMetrics.TransactionsDropped.Add(float64(n))
}

// RecordBatch marks a processed batch and updates the health timestamp.
func RecordBatch(unixNow int64) {
	DefaultMetrics.BatchesProcessed.Inc()
	DefaultMetrics.LastSuccessfulBatch.Set(float64(unixNow))
}

// RecordParseError increments the malformed batch counter.
func RecordParseError() {
	DefaultMetrics.ParseErrors.Inc()
}

// RecordQuery records a served query and its latency.
func RecordQuery(kind string, seconds float64) {
	DefaultMetrics.QueriesServed.WithLabelValues(kind).Inc()
	DefaultMetrics.QueryLatency.WithLabelValues(kind).Observe(seconds)
}

// UpdateWindowSize updates the window size gauge.
func UpdateWindowSize(n int) {
	DefaultMetrics.WindowSize.Set(float64(n))
}

// RecordPruned adds to the pruned transactions counter.
func RecordPruned(n int) {
	DefaultMetrics.WindowPrunedTotal.Add(float64(n))
}

// UpdateHighestSlot updates the highest slot seen gauge.
func UpdateHighestSlot(slot int64) {
	DefaultMetrics.HighestSlotSeen.Set(float64(slot))
}

// RecordSnapshotWritten increments the snapshot counter for a metric name.
func RecordSnapshotWritten(metric string) {
	DefaultMetrics.SnapshotsWritten.WithLabelValues(metric).Inc()
}

// RecordStorageError increments the storage error counter for a database.
func RecordStorageError(database string) {
	DefaultMetrics.StorageErrors.WithLabelValues(database).Inc()
}

// ObserveDBQuery records the duration of one database call.
func ObserveDBQuery(database, operation string, seconds float64) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
}
