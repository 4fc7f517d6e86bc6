package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkspace_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkspace_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkspace_cache_lookups_total",
		Help: "Cache lookups by key family and result (hit, miss, error)",
	}, []string{"family", "result"})

	// CascadeRowsDeleted counts rows removed by delete cascades.
	CascadeRowsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkspace_cascade_rows_deleted_total",
		Help: "Rows removed by delete cascades by root entity and table",
	}, []string{"root", "table"})

	// BlobOperations counts binary store calls by backend, operation and result.
	BlobOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkspace_blob_operations_total",
		Help: "Binary store operations by backend, operation and result",
	}, []string{"backend", "operation", "result"})

	// FeedQueries counts feed compositions by mode (page, random).
	FeedQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkspace_feed_queries_total",
		Help: "Feed compositions by mode",
	}, []string{"mode"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ResultLabel turns an error into a metric result label.
func ResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
