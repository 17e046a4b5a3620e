package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storm_claims"

// Analysis outcome label values.
const (
	OutcomeComplete = "complete"
	OutcomeFallback = "fallback"
	OutcomeRejected = "rejected"
)

// Metrics holds the Prometheus collectors for the analysis engine and its adapters.
type Metrics struct {
	// Analysis engine metrics.
	AnalysisRequests  *prometheus.CounterVec   // labels: analysis={risk,damage,fraud}, outcome={complete,fallback,rejected}
	AnalysisDuration  *prometheus.HistogramVec // labels: analysis
	AnalysisBatchSize prometheus.Histogram
	BatchItemFailures *prometheus.CounterVec // labels: type (known types or "unknown")

	// Kafka pipeline metrics.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Environment lookup metrics.
	EnvironmentRequests    *prometheus.CounterVec // labels: outcome={success,error}
	EnvironmentCache       *prometheus.CounterVec // labels: result={hit,miss}
	EnvironmentAPIDuration prometheus.Histogram
	EnvironmentEnabled     prometheus.Gauge

	ReviewNotifications *prometheus.CounterVec // labels: outcome={published,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysisRequests,
		m.AnalysisDuration,
		m.AnalysisBatchSize,
		m.BatchItemFailures,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.EnvironmentRequests,
		m.EnvironmentCache,
		m.EnvironmentAPIDuration,
		m.EnvironmentEnabled,
		m.ReviewNotifications,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_requests_total",
			Help:      "Analysis requests by kind and outcome.",
		}, []string{"analysis", "outcome"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a single analysis.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"analysis"}),
		AnalysisBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_batch_size",
			Help:      "Number of items per batch request.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		BatchItemFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_item_failures_total",
			Help:      "Batch items that failed, by request type.",
		}, []string{"type"}),

		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total messages that failed analysis.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-analyze-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),

		EnvironmentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "environment_requests_total",
			Help:      "Environment service requests by outcome.",
		}, []string{"outcome"}),
		EnvironmentCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "environment_cache_total",
			Help:      "Environment cache lookups by result.",
		}, []string{"result"}),
		EnvironmentAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "environment_api_duration_seconds",
			Help:      "Environment service request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		EnvironmentEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "environment_enabled",
			Help:      "1 when environment lookups are enabled, 0 otherwise.",
		}),

		ReviewNotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_notifications_total",
			Help:      "Fraud review notifications by outcome.",
		}, []string{"outcome"}),
	}
}
