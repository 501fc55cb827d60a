package upload

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the widget's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "imgupload").
	Namespace string

	// Subsystem is the metrics subsystem (default: "widget").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for upload duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the widget's Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "imgupload",
		Subsystem: "widget",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the widget's Prometheus collectors. Several widgets may
// share one Metrics. A nil *Metrics records nothing.
type Metrics struct {
	filesAccepted  prometheus.Counter
	filesRejected  *prometheus.CounterVec
	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
}

// NewMetrics creates and registers the widget metrics:
//   - imgupload_widget_files_accepted_total
//   - imgupload_widget_files_rejected_total{reason}
//   - imgupload_widget_uploads_total{status}
//   - imgupload_widget_upload_duration_seconds
//
// Registering twice on the same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		filesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "files_accepted_total",
			Help:        "Total number of files accepted into a collection",
			ConstLabels: config.ConstLabels,
		}),

		filesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "files_rejected_total",
			Help:        "Total number of files rejected by validation",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "uploads_total",
			Help:        "Total number of upload attempts by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		uploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "upload_duration_seconds",
			Help:        "Duration of upload requests in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *Metrics) recordAccepted(n int) {
	if m != nil && n > 0 {
		m.filesAccepted.Add(float64(n))
	}
}

func (m *Metrics) recordRejected(errs ValidationErrors) {
	if m == nil {
		return
	}
	for _, e := range errs {
		m.filesRejected.WithLabelValues(e.Reason.String()).Inc()
	}
}

// recordUpload records an upload outcome. status is "success", "failure",
// "error" or "empty".
func (m *Metrics) recordUpload(status string, seconds float64) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
	if status != "empty" {
		m.uploadDuration.Observe(seconds)
	}
}
