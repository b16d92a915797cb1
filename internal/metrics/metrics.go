package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roadmap_db_query_duration_seconds",
			Help:    "Row store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roadmap_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	Mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_mutations_total",
			Help: "Reconciler mutations by entity kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: ok, denied, invalid, remote_error
	)

	LegacyNotesMigrated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roadmap_legacy_notes_migrated_total",
			Help: "Notes created from legacy embedded milestone notes",
		},
	)
)

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementMutation(kind, outcome string) {
	Mutations.WithLabelValues(kind, outcome).Inc()
}
