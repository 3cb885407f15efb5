package plugin

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type dispatchMetrics struct {
	dispatches *prometheus.CounterVec
	failures   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	active     prometheus.Gauge
}

var (
	dispatchMetricsOnce sync.Once
	dispatchMetricsInst *dispatchMetrics
)

func globalDispatchMetrics() *dispatchMetrics {
	dispatchMetricsOnce.Do(func() {
		dispatchMetricsInst = newDispatchMetrics()
	})
	return dispatchMetricsInst
}

func newDispatchMetrics() *dispatchMetrics {
	return &dispatchMetrics{
		dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hookmind",
			Subsystem: "dispatcher",
			Name:      "dispatches_total",
			Help:      "Hook dispatches, labeled by event and outcome",
		}, []string{"event", "outcome"}),
		failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hookmind",
			Subsystem: "dispatcher",
			Name:      "handler_failures_total",
			Help:      "Handler failures during dispatch, labeled by event and plugin",
		}, []string{"event", "plugin"}),
		durations: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hookmind",
			Subsystem: "dispatcher",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of a full dispatch across all handlers",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event"}),
		active: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "hookmind",
			Subsystem: "registry",
			Name:      "active_plugins",
			Help:      "Plugins currently in the activated state",
		}),
	}
}

func (m *dispatchMetrics) recordDispatch(event string) func(outcome string) {
	if m == nil {
		return func(string) {}
	}
	timer := prometheus.NewTimer(m.durations.WithLabelValues(event))
	return func(outcome string) {
		timer.ObserveDuration()
		m.dispatches.WithLabelValues(event, outcome).Inc()
	}
}

func (m *dispatchMetrics) recordFailure(event, pluginName string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(event, pluginName).Inc()
}

func (m *dispatchMetrics) setActive(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}
