package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PersonaOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Name:      "operations_total",
		Help:      "Total number of persona service operations",
	}, []string{"operation", "outcome"})

	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Name:      "validation_failures_total",
		Help:      "Total number of attribute payloads rejected by validation",
	}, []string{"category"})

	// CorruptPayloads counts stored attribute payloads that failed to parse
	// on read and were served as an empty mapping instead.
	CorruptPayloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Name:      "payload_corrupt_total",
		Help:      "Total number of corrupt stored attribute payloads recovered as empty",
	}, []string{"category"})

	FieldConfigReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Name:      "field_config_reloads_total",
		Help:      "Total number of field configuration reload attempts",
	}, []string{"outcome"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Name:      "events_published_total",
		Help:      "Total number of persona change events published",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "persona",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "persona",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
