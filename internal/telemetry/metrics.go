package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records request outcomes as Prometheus series. A nil *Metrics
// records nothing. It is safe for concurrent use.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	attempts        prometheus.Histogram
	retriesTotal    *prometheus.CounterVec
}

// NewMetrics registers the SDK metrics with registerer. Registering twice
// with the same registerer panics, so share one Metrics per registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luna_requests_total",
				Help: "Total number of logical API calls by outcome",
			},
			[]string{"method", "outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "luna_request_duration_seconds",
				Help:    "Duration of logical API calls including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		attempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "luna_request_attempts",
				Help:    "Number of attempts made per logical API call",
				Buckets: []float64{1, 2, 3, 4, 5, 8},
			},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luna_request_retries_total",
				Help: "Total number of retries by the error code that caused them",
			},
			[]string{"code"},
		),
	}
}

// RecordRequest records a finished call. outcome is "success" or the error code.
func (m *Metrics) RecordRequest(method, outcome string, attempts int, duration time.Duration) {
	if m == nil {
		return
	}

	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
	m.attempts.Observe(float64(attempts))
}

// RecordRetry records one retry caused by code.
func (m *Metrics) RecordRetry(code string) {
	if m == nil {
		return
	}

	m.retriesTotal.WithLabelValues(code).Inc()
}
