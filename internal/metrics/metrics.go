package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ConversionRequestsTotal  prometheus.Counter
	RefreshDecisionsTotal    *prometheus.CounterVec
	RateFetchesTotal         *prometheus.CounterVec
	RefreshDeduplicatedTotal prometheus.Counter
	PersistFailuresTotal     prometheus.Counter
	LastFetchTimestamp       prometheus.Gauge
}

// NewMetrics registers all collectors on reg. Pass prometheus.DefaultRegisterer
// to expose them on /metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		ConversionRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_requests_total",
				Help: "Total number of currency conversion requests",
			},
		),

		RefreshDecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refresh_decisions_total",
				Help: "Refresh decisions taken, by outcome",
			},
			[]string{"decision"},
		),

		RateFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_fetches_total",
				Help: "Remote rate fetch attempts, by result",
			},
			[]string{"result"},
		),

		RefreshDeduplicatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "refresh_deduplicated_total",
				Help: "Refresh calls that joined an in-flight fetch",
			},
		),

		PersistFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "state_persist_failures_total",
				Help: "Failed writes of the rate state to the store",
			},
		),

		LastFetchTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_last_fetch_timestamp_seconds",
				Help: "Unix time of the last successful rate fetch",
			},
		),
	}
}
