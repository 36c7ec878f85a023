package services

import (
	"time"

	"partyplanner/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchMetrics exports gateway call counts and latency to Prometheus.
type FetchMetrics struct {
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewFetchMetrics registers the fetch collectors on reg.
func NewFetchMetrics(reg prometheus.Registerer) *FetchMetrics {
	m := &FetchMetrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partyplanner",
			Subsystem: "gateway",
			Name:      "fetches_total",
			Help:      "Gateway fetches by resource and outcome (ok, network, status, shape).",
		}, []string{"resource", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "partyplanner",
			Subsystem: "gateway",
			Name:      "fetch_duration_seconds",
			Help:      "Gateway fetch latency by resource.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
	}
	reg.MustRegister(m.fetches, m.duration)
	return m
}

// ObserveFetch counts one fetch and records its latency.
func (m *FetchMetrics) ObserveFetch(res domain.Resource, outcome string, elapsed time.Duration) {
	m.fetches.WithLabelValues(string(res), outcome).Inc()
	m.duration.WithLabelValues(string(res)).Observe(elapsed.Seconds())
}
