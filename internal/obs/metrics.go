// Package obs holds the service's Prometheus instrumentation.
package obs

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	RegistrationsTotal *prometheus.CounterVec // outcome=granted|rate_limited|...
	CaptchasIssued     prometheus.Counter
	CacheSeeds         prometheus.Counter // quota counters materialized from the durable store

	HTTPDuration *prometheus.HistogramVec // method, path
}

func NewMetrics() *Metrics {
	return &Metrics{
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registration_decisions_total",
				Help: "Admission decisions by outcome",
			},
			[]string{"outcome"},
		),
		CaptchasIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "captchas_issued_total",
				Help: "Challenges issued",
			},
		),
		CacheSeeds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "quota_cache_seeds_total",
				Help: "Quota counters seeded from the durable event record",
			},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
			},
			[]string{"method", "path"},
		),
	}
}

func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		m.RegistrationsTotal,
		m.CaptchasIssued,
		m.CacheSeeds,
		m.HTTPDuration,
	)
}

// RecordDecision is nil-safe so services can run without metrics in
// tests.
func (m *Metrics) RecordDecision(outcome string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
}
