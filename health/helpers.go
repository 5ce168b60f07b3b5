package health

import "time"

// NewHealthy creates a healthy status for a runtime or endpoint.
func NewHealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   true,
		Status:    "healthy",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewUnhealthy creates an unhealthy status for a runtime or endpoint.
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    "unhealthy",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDegraded creates a degraded status. Paused runtimes report degraded
// since they hold resources without processing values.
func NewDegraded(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    "degraded",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Aggregate rolls per-runtime statuses into one graph-level status. A single
// unhealthy runtime makes the graph unhealthy; with no unhealthy runtimes a
// single degraded runtime makes it degraded. The inputs are retained as
// sub-statuses so observers can drill into which runtime pulled the graph
// down.
func Aggregate(component string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(component, "no runtimes tracked")
	}

	hasUnhealthy := false
	hasDegraded := false
	for _, sub := range subStatuses {
		switch {
		case sub.IsUnhealthy():
			hasUnhealthy = true
		case sub.IsDegraded():
			hasDegraded = true
		}
	}

	var status Status
	switch {
	case hasUnhealthy:
		status = NewUnhealthy(component, "one or more runtimes unhealthy")
	case hasDegraded:
		status = NewDegraded(component, "one or more runtimes degraded")
	default:
		status = NewHealthy(component, "all runtimes healthy")
	}

	status.SubStatuses = make([]Status, len(subStatuses))
	copy(status.SubStatuses, subStatuses)
	return status
}
