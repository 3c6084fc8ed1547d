// Package metrics defines the Prometheus collectors exported by the runtime.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nmz_inspector"

// Metrics groups the runtime collectors.
type Metrics struct {
	EventsSent  *prometheus.CounterVec
	Responses   *prometheus.CounterVec
	Pending     prometheus.Gauge
	WaitSeconds prometheus.Histogram
	FatalErrors *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which keeps them usable without exporting anything.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EventsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_sent_total",
			Help:      "Event requests sent to the orchestrator, by event kind.",
		}, []string{"kind"}),
		Responses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Responses received from the orchestrator, by result.",
		}, []string{"result"}),
		Pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_waiters",
			Help:      "Goroutines currently blocked waiting for a decision.",
		}),
		WaitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wait_seconds",
			Help:      "Time a reporting goroutine spent blocked.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		FatalErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fatal_errors_total",
			Help:      "Fatal errors, by class.",
		}, []string{"class"}),
	}
}

// ObserveWait records how long a goroutine was blocked since start.
func (m *Metrics) ObserveWait(start time.Time) {
	m.WaitSeconds.Observe(time.Since(start).Seconds())
}
