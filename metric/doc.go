// Package metric provides Prometheus-based metrics collection and HTTP server
// for flow runtime monitoring and observability.
//
// The package offers a centralized metrics registry managing both core
// platform metrics (runtime state, tick activity, value flow, NATS health)
// and custom runtime-specific metrics. It includes an HTTP server exposing
// metrics in Prometheus format for monitoring system integration.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Platform-level metrics automatically registered (Metrics type)
//  2. Runtime Registry: Extensible registration for runtime-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// This architecture separates infrastructure concerns (core metrics) from
// block concerns (runtime-specific metrics) while providing a unified metrics
// endpoint for monitoring systems.
//
// # Basic Usage
//
// Setting up metrics collection and HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	securityCfg := security.Config{} // Platform security config
//	server := metric.NewServer(9090, "/metrics", registry, securityCfg)
//
//	go func() {
//	    if err := server.Start(); err != nil && err != http.ErrServerClosed {
//	        log.Printf("Metrics server error: %v", err)
//	    }
//	}()
//
//	// Record core platform metrics
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordRuntimeState("clock", 1)
//	coreMetrics.RecordTick("clock")
//	coreMetrics.RecordValueEmitted("clock", "output1")
//
// The metrics server exposes Prometheus-formatted metrics at
// http://localhost:9090/metrics and a health check at
// http://localhost:9090/health.
//
// # Core Metrics
//
// The package automatically registers core platform metrics tracking:
//
//   - Runtime lifecycle: runtime_state (0=idle, 1=running, 2=paused)
//   - Tick activity: runtime_ticks_total, runtime_tick_duration_seconds
//   - Value flow: values_received_total, values_emitted_total, values_dropped_total
//   - Failures: runtime_faults_total
//   - NATS connectivity: nats_connected, nats_rtt_milliseconds, nats_reconnects_total
//
// All core metrics use the namespace "flowruntime" and appropriate
// subsystems:
//
//   - flowruntime_runtime_state{runtime="..."}
//   - flowruntime_values_emitted_total{runtime="...",port="..."}
//   - flowruntime_nats_connected
//
// # Runtime-Specific Metrics
//
// Runtimes and conduits register custom metrics through the registry:
//
//	ticks := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "clock_rollovers_total",
//	    Help: "Total number of minute rollovers",
//	})
//	err := registry.RegisterCounter("clock", "clock_rollovers_total", ticks)
//
// Vector variants (RegisterCounterVec, RegisterGaugeVec,
// RegisterHistogramVec) cover labeled metrics. Registration is keyed by
// "name.metric", so the same metric name can only be registered once; the
// registry surfaces duplicates as invalid-class errors.
//
// # MetricsRegistrar Interface
//
// Components accept the MetricsRegistrar interface for dependency injection:
//
//	func NewThing(metrics metric.MetricsRegistrar) *Thing {
//	    counter := prometheus.NewCounter(prometheus.CounterOpts{
//	        Name: "operations_total",
//	        Help: "Total operations",
//	    })
//	    metrics.RegisterCounter("thing", "operations_total", counter)
//	    return &Thing{}
//	}
//
// This enables testing with mock registrars and provides loose coupling.
//
// # Thread Safety
//
// All registry operations are thread-safe:
//   - Registration methods use mutex protection
//   - Metric recording is lock-free (Prometheus guarantee)
//   - CoreMetrics() returns a thread-safe shared instance
//   - PrometheusRegistry() is safe for concurrent access
//
// # Error Handling
//
// Registration methods return errors for duplicate registration, Prometheus
// conflicts, and validation failures. The Server.Start() method returns
// errors for a server that is already running, a nil registry, and HTTP
// server failures (port in use, permission denied).
package metric
