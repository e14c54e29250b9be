// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vesti_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vesti_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EngagementEvents counts engagement mutations applied to posts and products.
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vesti_engagement_events_total",
		Help: "Total engagement events applied, by collection and kind",
	}, []string{"collection", "kind"})

	// TryOnJobs counts try-on pipeline jobs by terminal status.
	TryOnJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vesti_tryon_jobs_total",
		Help: "Total try-on jobs by terminal status",
	}, []string{"status"})

	// TryOnPipelineLatency records end-to-end synthesis call latency.
	TryOnPipelineLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vesti_tryon_pipeline_latency_seconds",
		Help:    "Latency of the external synthesis call in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// WebSocketConnectionsTotal is the gauge of active engagement-event subscribers.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vesti_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vesti_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
