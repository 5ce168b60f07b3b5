package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
)

// monitorMetrics holds Prometheus metrics for the Monitor.
type monitorMetrics struct {
	clientsConnected prometheus.Gauge
	connectionsTotal prometheus.Counter
	snapshotsSent    prometheus.Counter
}

// newMonitorMetrics creates and registers monitor metrics. Returns nil when
// no registry is provided, which disables instrumentation.
func newMonitorMetrics(registry *metric.MetricsRegistry) *monitorMetrics {
	if registry == nil {
		return nil
	}

	m := &monitorMetrics{
		clientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowruntime",
			Subsystem: "monitor",
			Name:      "clients_connected",
			Help:      "Number of currently connected WebSocket clients",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowruntime",
			Subsystem: "monitor",
			Name:      "client_connections_total",
			Help:      "Total WebSocket client connections accepted",
		}),
		snapshotsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowruntime",
			Subsystem: "monitor",
			Name:      "snapshots_broadcast_total",
			Help:      "Total state snapshots broadcast to clients",
		}),
	}

	registry.RegisterGauge("monitor", "clients_connected", m.clientsConnected)
	registry.RegisterCounter("monitor", "client_connections_total", m.connectionsTotal)
	registry.RegisterCounter("monitor", "snapshots_broadcast_total", m.snapshotsSent)

	return m
}
