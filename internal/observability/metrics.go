package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "heatguard"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Bulletin metrics.
	BulletinsGenerated *prometheus.CounterVec // labels: source={pipeline,http}, peak_risk
	RejectedForecasts  *prometheus.CounterVec // labels: reason={invalid_reading,empty_forecast,invalid_request}
	UVAdjustedHours    prometheus.Counter

	// Archive metrics.
	ArchiveCache      *prometheus.CounterVec // labels: result={hit,miss}
	ArchiveOperations *prometheus.CounterVec // labels: op={save,get}, outcome={success,error,not_found}
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total forecast messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total bulletin messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total forecast messages that could not be turned into bulletins.",
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
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		BulletinsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulletins_generated_total",
			Help:      "Bulletins generated by source and peak risk.",
		}, []string{"source", "peak_risk"}),
		RejectedForecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_forecasts_total",
			Help:      "Forecasts rejected before a bulletin could be built, by reason.",
		}, []string{"reason"}),
		UVAdjustedHours: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uv_adjusted_hours_total",
			Help:      "Forecast hours that received the guidance-only UV exposure bump.",
		}),
		ArchiveCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_cache_total",
			Help:      "Bulletin archive cache lookups by result.",
		}, []string{"result"}),
		ArchiveOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_operations_total",
			Help:      "Bulletin archive operations by op and outcome.",
		}, []string{"op", "outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.BulletinsGenerated,
		m.RejectedForecasts,
		m.UVAdjustedHours,
		m.ArchiveCache,
		m.ArchiveOperations,
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// RegisterTo registers the metrics with reg. Tests use it to gather values.
func (m *Metrics) RegisterTo(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
