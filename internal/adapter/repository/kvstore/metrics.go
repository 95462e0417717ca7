package kvstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess  = "success"
	statusError    = "error"
	statusNotFound = "not_found"
)

type metrics struct {
	duration  *prometheus.HistogramVec
	total     *prometheus.CounterVec
	scanPages prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kvstore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of URL store operations against the key-value backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvstore",
			Name:      "operation_total",
			Help:      "Number of URL store operations by outcome.",
		}, []string{"operation", "status"}),
		scanPages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kvstore",
			Name:      "scan_pages",
			Help:      "Pages read to drain the mapping namespace.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.duration, m.total, m.scanPages)
	}

	return m
}

func (m *metrics) observe(operation, status string, started time.Time) {
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	m.total.WithLabelValues(operation, status).Inc()
}
