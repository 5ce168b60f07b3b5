package flow

import (
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// conduitMetrics holds Prometheus metrics for conduit operations.
type conduitMetrics struct {
	sends    prometheus.Counter
	receives prometheus.Counter
	depth    prometheus.Gauge
}

// newConduitMetrics creates and registers conduit metrics with the provided registry.
func newConduitMetrics(registry *metric.MetricsRegistry, name string) (*conduitMetrics, error) {
	m := &conduitMetrics{
		sends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "conduit",
			Name:        "sends_total",
			ConstLabels: prometheus.Labels{"conduit": name},
			Help:        "Total number of values sent into the conduit",
		}),
		receives: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "conduit",
			Name:        "receives_total",
			ConstLabels: prometheus.Labels{"conduit": name},
			Help:        "Total number of values received from the conduit",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flowruntime",
			Subsystem:   "conduit",
			Name:        "depth",
			ConstLabels: prometheus.Labels{"conduit": name},
			Help:        "Number of values currently buffered in the conduit",
		}),
	}

	if err := registry.RegisterCounter(name, "conduit_sends", m.sends); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "conduit_receives", m.receives); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(name, "conduit_depth", m.depth); err != nil {
		return nil, err
	}

	return m, nil
}

// recordSend increments the send counter and updates depth.
func (m *conduitMetrics) recordSend(depth int) {
	m.sends.Inc()
	m.depth.Set(float64(depth))
}

// recordReceive increments the receive counter and updates depth.
func (m *conduitMetrics) recordReceive(depth int) {
	m.receives.Inc()
	m.depth.Set(float64(depth))
}
