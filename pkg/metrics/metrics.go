package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storaged",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storaged",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "path"})

	ChannelInvocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storaged",
		Name:      "channel_invocations_total",
		Help:      "Total method calls dispatched by channel, method and outcome.",
	}, []string{"channel", "method", "outcome"})

	DiskQueryFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storaged",
		Name:      "disk_query_failures_total",
		Help:      "Total disk capacity lookups that failed and were reported as 0.",
	})

	PluginsRegistered = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storaged",
		Name:      "plugins_registered",
		Help:      "Number of plugins activated by the last registration pass.",
	})
)

// Outcome labels for ChannelInvocationsTotal.
const (
	OutcomeOK             = "ok"
	OutcomeNotImplemented = "not_implemented"
	OutcomeError          = "error"
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChannelInvocationsTotal,
		DiskQueryFailuresTotal,
		PluginsRegistered,
	)
}
