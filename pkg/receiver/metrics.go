package receiver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultStored   = "stored"
	resultRejected = "rejected"
	resultTooLarge = "too_large"
	resultError    = "error"
)

// Metrics holds the receiver's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	files *prometheus.CounterVec
}

// NewMetrics creates and registers imgupload_receiver_files_total{result}
// on reg. A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		files: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "imgupload",
			Subsystem: "receiver",
			Name:      "files_total",
			Help:      "Total number of received files by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) recordFiles(result string, n int) {
	if m != nil && n > 0 {
		m.files.WithLabelValues(result).Add(float64(n))
	}
}
