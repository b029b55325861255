package plugin

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are ambient observability for a PluginManager: how many plugins
// are active, how handler invocations resolve, and how many fixed-point
// rounds a batch needed to converge. None of this changes control flow —
// it is pure instrumentation, matching the teacher pack's use of
// prometheus/client_golang for gauges/counters/histograms elsewhere in the
// retrieved repos.
var (
	activePluginsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plugboard_active_plugins",
		Help: "Number of plugins currently active in the manager.",
	})

	handlerInvocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plugboard_handler_invocations_total",
		Help: "Handler invocations, partitioned by kind and result.",
	}, []string{"kind", "result"})

	fixedPointRounds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plugboard_fixed_point_rounds",
		Help:    "Number of rounds the fixed-point invoker needed per batch.",
		Buckets: prometheus.LinearBuckets(1, 1, 8),
	})
)

// Registry is the prometheus registry plugboard's metrics are registered
// against. The CLI harness serves it on /metrics; library consumers may
// ignore it entirely.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(activePluginsGauge, handlerInvocationsTotal, fixedPointRounds)
}

func handlerKindLabel(k HandlerKind) string {
	switch k {
	case KindInit:
		return "init"
	case KindDestroy:
		return "destroy"
	case KindEvent:
		return "event"
	case KindEvents:
		return "events"
	default:
		return "unknown"
	}
}

func recordInvocation(kind HandlerKind, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	handlerInvocationsTotal.WithLabelValues(handlerKindLabel(kind), result).Inc()
}

func recordFixedPointRounds(rounds int) {
	fixedPointRounds.Observe(float64(rounds))
}

func setActivePlugins(n int) {
	activePluginsGauge.Set(float64(n))
}
