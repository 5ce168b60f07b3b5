// Package health provides health monitoring functionality for flow runtimes and systems
// with thread-safe status tracking and aggregation.
//
// The health package enables tracking the health status of individual runtimes and aggregating
// graph-wide health information for monitoring, alerting, and operational visibility.
//
// # Health States
//
// The package supports three health states:
//   - Healthy: runtime operating normally (running, or idle after a clean stop)
//   - Degraded: runtime operating with reduced functionality (typically paused)
//   - Unhealthy: runtime not functioning properly (terminated by a tick failure)
//
// This three-state model enables nuanced health reporting and appropriate operational responses.
// For example, a paused graph might be expected during an operator intervention, while an
// unhealthy runtime triggers immediate incident response.
//
// # Core Components
//
// Status: Individual runtime health state containing status level, descriptive message,
// timestamp, optional metrics, and hierarchical sub-statuses for composite graphs.
//
// Monitor: Thread-safe centralized tracking system for multiple runtime health statuses
// with concurrent read/write access and automatic timestamp management.
//
// Helpers: Convenience functions for creating status objects and aggregating system health.
//
// # Basic Usage
//
// Creating and tracking runtime health:
//
//	monitor := health.NewMonitor()
//
//	// Update runtime health
//	monitor.UpdateHealthy("clock-gen", "running")
//	monitor.UpdateDegraded("threshold-filter", "paused")
//	monitor.UpdateUnhealthy("nats-egress", "publish failed after 5 attempts")
//
//	// Check individual runtime health
//	if status, exists := monitor.Get("clock-gen"); exists {
//	    if status.IsHealthy() {
//	        log.Println("Clock generator is healthy")
//	    }
//	}
//
//	// Get all runtime statuses
//	allStatuses := monitor.GetAll()
//	for name, status := range allStatuses {
//	    log.Printf("%s: %s - %s", name, status.Status, status.Message)
//	}
//
// # System-Wide Health Aggregation
//
// Combining multiple runtime health statuses into graph-wide indicators:
//
//	// Aggregate all monitored runtimes
//	graphHealth := monitor.AggregateHealth("stopwatch")
//	if graphHealth.IsUnhealthy() {
//	    log.Printf("Graph unhealthy: %s", graphHealth.Message)
//	    // Trigger alerts, restart, etc.
//	}
//
//	// Aggregation uses hierarchical rules:
//	// - Any unhealthy runtime → graph unhealthy
//	// - Any degraded runtime (with no unhealthy) → graph degraded
//	// - All healthy → graph healthy
//
// # Runtime Failure Conversion
//
// Converting a runtime's terminal error into a status:
//
//	if err := rt.Err(); err != nil {
//	    monitor.Update(rt.Name(), health.FromError(rt.Name(), err))
//	}
//
//	// Error messages are automatically sanitized to remove:
//	// - URLs (http://, nats://, ws://)
//	// - File paths (Unix and Windows)
//	// - IP addresses and ports
//	// - Credentials (password, token, key, secret)
//
// # Thread Safety
//
// All Monitor operations are thread-safe and can be safely called from multiple goroutines.
// The Monitor uses an RWMutex internally to allow concurrent reads while protecting writes.
// Status objects are immutable - methods like WithMetrics and WithSubStatus return new copies
// rather than modifying the original.
//
// # Security
//
// Error messages passed through FromError are automatically sanitized to remove
// potentially sensitive information:
//
//	// Original error with sensitive data
//	err := "failed to connect to https://api.example.com/v1 with password=secret123"
//
//	// After sanitization via FromError
//	// "failed to connect to [URL] with [REDACTED]"
//
// This prevents accidental exposure of sensitive data in health dashboards and logs.
//
// # Error Handling Philosophy
//
// The health package does not return errors because it represents the *result* of error
// handling, not part of error propagation. Health status is an observability output.
//
// Runtimes creating Status objects should use the errors package for any error wrapping
// before converting to health status messages. The health package then sanitizes these
// error messages for safe display.
//
// # Design Decisions
//
// Three-State Model: Chose healthy/degraded/unhealthy over binary healthy/unhealthy to
// enable nuanced operational responses. Degraded maps naturally onto the paused execution
// state, which is operator-driven and expected rather than a failure.
//
// Automatic Sanitization: Error messages are sanitized by default (no opt-out) to prevent
// accidental credential exposure. This "secure by default" design prevents common security
// mistakes even if it occasionally over-redacts during debugging.
//
// Value-Based Status: Status is a struct, not *Status, making it immutable and preventing
// accidental mutation. Methods like WithMetrics return new copies.
//
// Conservative Aggregation: Graph health follows "worst case" rules - a single unhealthy
// runtime marks the entire graph unhealthy. This conservative approach ensures problems
// are not masked by healthy runtimes.
//
// Data flow:
//
//	Runtime → Err()/State() → Registry.PublishHealth → health.Status → Monitor → HTTP /health
package health
