// Package service exposes a running flow graph for observation. The Monitor
// serves point-in-time runtime state and health over HTTP and streams
// periodic state snapshots to WebSocket clients.
//
// # Endpoints
//
//	GET /runtimes   JSON snapshot of every registered runtime's state
//	GET /health     aggregate health for the graph (503 when unhealthy)
//	GET /ws         WebSocket state stream (path configurable)
//	GET /           HTML index linking the endpoints above
//
// # Usage
//
//	monitor, err := service.NewMonitor(registry, service.DefaultConfig(),
//		service.WithLogger(logger),
//		service.WithMetrics(metricsRegistry),
//	)
//	if err != nil {
//		return err
//	}
//	if err := monitor.Start(ctx); err != nil {
//		return err
//	}
//	defer monitor.Stop(5 * time.Second)
//
// # WebSocket stream
//
// The stream is broadcast-only. On connect a client immediately receives one
// StateSnapshot frame, then one per configured interval:
//
//	{
//	  "type": "states",
//	  "timestamp": "2026-01-12T10:30:00Z",
//	  "count": 2,
//	  "states": {"clock": "running", "display": "paused"}
//	}
//
// Anything a client sends is ignored. The server pings every 30 seconds and
// drops connections that miss the 60 second pong deadline.
//
// The monitor observes graphs from the boundary: it reads registry state and
// publishes health, but never drives lifecycle transitions itself.
package service
