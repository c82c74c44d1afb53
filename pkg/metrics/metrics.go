package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmailSendCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_send_count",
			Help: "Total number of send attempts by outcome",
		},
		[]string{"status"}, // status: sending, error, rejected
	)

	ProviderDispatchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_dispatch_latency_ms",
			Help:    "Email provider dispatch latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordEmailSend counts one send attempt outcome.
func RecordEmailSend(status string) {
	EmailSendCount.WithLabelValues(status).Inc()
}

// RecordProviderDispatch records one dispatch latency sample.
func RecordProviderDispatch(status string, duration time.Duration) {
	ProviderDispatchLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

// RecordHTTPRequest records one request duration sample.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
