// Package metrics holds the Prometheus collectors shared by the adapters and
// application services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// AuthEvents counts login/logout/restore outcomes by event name.
	AuthEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classroll",
		Name:      "auth_events_total",
		Help:      "Authentication events by outcome.",
	}, []string{"event"})

	// Mutations counts successful directory and ledger writes.
	Mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classroll",
		Name:      "mutations_total",
		Help:      "Successful directory and ledger mutations.",
	}, []string{"component", "op"})

	// StoreDuration observes persistence adapter latency.
	StoreDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "classroll",
		Name:      "store_duration_seconds",
		Help:      "Persistence adapter operation latency.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"backend", "op"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "classroll",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		AuthEvents,
		Mutations,
		StoreDuration,
		RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
