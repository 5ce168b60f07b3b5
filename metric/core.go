package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not block-specific)
type Metrics struct {
	// Runtime metrics
	RuntimeState   *prometheus.GaugeVec
	TicksTotal     *prometheus.CounterVec
	TickDuration   *prometheus.HistogramVec
	ValuesReceived *prometheus.CounterVec
	ValuesEmitted  *prometheus.CounterVec
	ValuesDropped  *prometheus.CounterVec
	FaultsTotal    *prometheus.CounterVec
	HealthStatus   *prometheus.GaugeVec

	// NATS metrics
	NATSConnected  prometheus.Gauge
	NATSRTT        prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Runtime metrics
		RuntimeState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "flowruntime",
				Subsystem: "runtime",
				Name:      "state",
				Help:      "Runtime execution state (0=idle, 1=running, 2=paused)",
			},
			[]string{"runtime"},
		),

		TicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowruntime",
				Subsystem: "runtime",
				Name:      "ticks_total",
				Help:      "Total number of tick block invocations",
			},
			[]string{"runtime"},
		),

		TickDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "flowruntime",
				Subsystem: "runtime",
				Name:      "tick_duration_seconds",
				Help:      "Tick block execution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"runtime"},
		),

		ValuesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowruntime",
				Subsystem: "values",
				Name:      "received_total",
				Help:      "Total number of values received on input ports",
			},
			[]string{"runtime", "port"},
		),

		ValuesEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowruntime",
				Subsystem: "values",
				Name:      "emitted_total",
				Help:      "Total number of values emitted on output ports",
			},
			[]string{"runtime", "port"},
		),

		ValuesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowruntime",
				Subsystem: "values",
				Name:      "dropped_total",
				Help:      "Total number of values dropped on unwired output ports",
			},
			[]string{"runtime", "port"},
		),

		FaultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowruntime",
				Subsystem: "runtime",
				Name:      "faults_total",
				Help:      "Total number of tick block failures by error class",
			},
			[]string{"runtime", "class"},
		),

		HealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "flowruntime",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"runtime"},
		),

		// NATS metrics
		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "flowruntime",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSRTT: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "flowruntime",
				Subsystem: "nats",
				Name:      "rtt_milliseconds",
				Help:      "NATS round-trip time in milliseconds",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "flowruntime",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

// RecordRuntimeState updates the runtime state metric
func (c *Metrics) RecordRuntimeState(runtime string, state int) {
	c.RuntimeState.WithLabelValues(runtime).Set(float64(state))
}

// RecordTick increments the tick counter
func (c *Metrics) RecordTick(runtime string) {
	c.TicksTotal.WithLabelValues(runtime).Inc()
}

// RecordTickDuration records tick block execution time
func (c *Metrics) RecordTickDuration(runtime string, duration time.Duration) {
	c.TickDuration.WithLabelValues(runtime).Observe(duration.Seconds())
}

// RecordValueReceived increments the received value counter
func (c *Metrics) RecordValueReceived(runtime, port string) {
	c.ValuesReceived.WithLabelValues(runtime, port).Inc()
}

// RecordValueEmitted increments the emitted value counter
func (c *Metrics) RecordValueEmitted(runtime, port string) {
	c.ValuesEmitted.WithLabelValues(runtime, port).Inc()
}

// RecordValueDropped increments the dropped value counter
func (c *Metrics) RecordValueDropped(runtime, port string) {
	c.ValuesDropped.WithLabelValues(runtime, port).Inc()
}

// RecordFault increments the fault counter. class is the error
// classification (transient, invalid, fatal) of the failure.
func (c *Metrics) RecordFault(runtime, class string) {
	c.FaultsTotal.WithLabelValues(runtime, class).Inc()
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(runtime string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthStatus.WithLabelValues(runtime).Set(value)
}

// RecordNATSStatus updates NATS connection status
func (c *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSRTT updates NATS round-trip time
func (c *Metrics) RecordNATSRTT(rtt time.Duration) {
	c.NATSRTT.Set(float64(rtt.Milliseconds()))
}

// RecordNATSReconnect increments reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	c.NATSReconnects.Inc()
}
