// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lead_chatbot"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Streaming relay
	StreamsTotal     prometheus.Counter
	StreamsActive    prometheus.Gauge
	StreamsFailed    prometheus.Counter
	FragmentsRelayed prometheus.Counter
	StreamDuration   prometheus.Histogram

	// Finalization pipeline
	FinalizationsSuccess prometheus.Counter
	FinalizationsFailed  *prometheus.CounterVec // by failing step

	// Persistence
	LeadsStored *prometheus.CounterVec // by backend

	// Lead event publication
	EventPublishTotal  prometheus.Counter
	EventPublishErrors prometheus.Counter
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		StreamsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_total",
			Help:      "Total number of chat streams started",
		}),
		StreamsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "streams_active",
			Help:      "Number of currently active chat streams",
		}),
		StreamsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_failed_total",
			Help:      "Total number of streams terminated by an upstream error",
		}),
		FragmentsRelayed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_relayed_total",
			Help:      "Total number of assistant text fragments relayed to clients",
		}),
		StreamDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stream_duration_seconds",
			Help:      "Duration of chat streams in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		FinalizationsSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalizations_success_total",
			Help:      "Total number of conversations finalized and persisted",
		}),
		FinalizationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalizations_failed_total",
			Help:      "Total number of finalization failures",
		}, []string{"step"}),

		LeadsStored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_stored_total",
			Help:      "Total number of lead records written",
		}, []string{"backend"}),

		EventPublishTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Total number of finalized-lead events published",
		}),
		EventPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Total number of finalized-lead event publish failures",
		}),
	}
}
