package httppresentation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP-level prometheus collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP request handling in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}
