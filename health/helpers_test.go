package health

import (
	"testing"
	"time"
)

func TestNewHealthy(t *testing.T) {
	status := NewHealthy("clock-gen", "running")

	if status.Component != "clock-gen" {
		t.Errorf("Expected component clock-gen, got %s", status.Component)
	}
	if status.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", status.Status)
	}
	if !status.Healthy {
		t.Error("Expected Healthy flag to be true")
	}
	if status.Message != "running" {
		t.Errorf("Expected message 'running', got %s", status.Message)
	}
	if status.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if !status.IsHealthy() {
		t.Error("Expected IsHealthy() to return true")
	}
}

func TestNewUnhealthy(t *testing.T) {
	status := NewUnhealthy("nats-egress", "connection lost")

	if status.Component != "nats-egress" {
		t.Errorf("Expected component nats-egress, got %s", status.Component)
	}
	if status.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got %s", status.Status)
	}
	if status.Healthy {
		t.Error("Expected Healthy flag to be false")
	}
	if status.Message != "connection lost" {
		t.Errorf("Expected message 'connection lost', got %s", status.Message)
	}
	if status.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if !status.IsUnhealthy() {
		t.Error("Expected IsUnhealthy() to return true")
	}
}

func TestNewDegraded(t *testing.T) {
	status := NewDegraded("threshold-filter", "paused")

	if status.Component != "threshold-filter" {
		t.Errorf("Expected component threshold-filter, got %s", status.Component)
	}
	if status.Status != "degraded" {
		t.Errorf("Expected status 'degraded', got %s", status.Status)
	}
	if status.Healthy {
		t.Error("Expected Healthy flag to be false")
	}
	if status.Message != "paused" {
		t.Errorf("Expected message 'paused', got %s", status.Message)
	}
	if status.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if !status.IsDegraded() {
		t.Error("Expected IsDegraded() to return true")
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name         string
		graph        string
		subStatuses  []Status
		wantStatus   string
		wantMessage  string
		wantSubCount int
	}{
		{
			name:         "empty graph",
			graph:        "graph",
			subStatuses:  []Status{},
			wantStatus:   "healthy",
			wantMessage:  "no runtimes tracked",
			wantSubCount: 0,
		},
		{
			name:  "all running",
			graph: "graph",
			subStatuses: []Status{
				{Status: "healthy", Component: "clock"},
				{Status: "healthy", Component: "counter"},
			},
			wantStatus:   "healthy",
			wantMessage:  "all runtimes healthy",
			wantSubCount: 2,
		},
		{
			name:  "one failed runtime",
			graph: "graph",
			subStatuses: []Status{
				{Status: "healthy", Component: "clock"},
				{Status: "unhealthy", Component: "threshold"},
			},
			wantStatus:   "unhealthy",
			wantMessage:  "one or more runtimes unhealthy",
			wantSubCount: 2,
		},
		{
			name:  "one paused runtime",
			graph: "graph",
			subStatuses: []Status{
				{Status: "healthy", Component: "clock"},
				{Status: "degraded", Component: "display"},
			},
			wantStatus:   "degraded",
			wantMessage:  "one or more runtimes degraded",
			wantSubCount: 2,
		},
		{
			name:  "failure outranks pause",
			graph: "graph",
			subStatuses: []Status{
				{Status: "degraded", Component: "display"},
				{Status: "unhealthy", Component: "threshold"},
			},
			wantStatus:   "unhealthy",
			wantMessage:  "one or more runtimes unhealthy",
			wantSubCount: 2,
		},
		{
			name:  "several paused runtimes",
			graph: "graph",
			subStatuses: []Status{
				{Status: "degraded", Component: "clock"},
				{Status: "degraded", Component: "counter"},
				{Status: "healthy", Component: "display"},
			},
			wantStatus:   "degraded",
			wantMessage:  "one or more runtimes degraded",
			wantSubCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Aggregate(tt.graph, tt.subStatuses)

			if result.Component != tt.graph {
				t.Errorf("Expected component %s, got %s", tt.graph, result.Component)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("Expected status %s, got %s", tt.wantStatus, result.Status)
			}
			if result.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, result.Message)
			}
			if len(result.SubStatuses) != tt.wantSubCount {
				t.Errorf("Expected %d sub-statuses, got %d", tt.wantSubCount, len(result.SubStatuses))
			}
			if result.Timestamp.IsZero() {
				t.Error("Expected timestamp to be set")
			}

			for i, expected := range tt.subStatuses {
				if i >= len(result.SubStatuses) {
					break
				}
				if result.SubStatuses[i].Component != expected.Component {
					t.Errorf("Sub-status %d: expected component %s, got %s",
						i, expected.Component, result.SubStatuses[i].Component)
				}
				if result.SubStatuses[i].Status != expected.Status {
					t.Errorf("Sub-status %d: expected status %s, got %s",
						i, expected.Status, result.SubStatuses[i].Status)
				}
			}
		})
	}
}

func TestAggregate_DoesNotModifyInput(t *testing.T) {
	original := []Status{
		{Status: "healthy", Component: "clock"},
		{Status: "unhealthy", Component: "threshold"},
	}
	originalCopy := make([]Status, len(original))
	copy(originalCopy, original)

	result := Aggregate("graph", original)

	for i, orig := range original {
		if orig.Component != originalCopy[i].Component || orig.Status != originalCopy[i].Status {
			t.Errorf("Aggregate modified input slice at index %d", i)
		}
	}

	// The aggregate carries copies, not aliases of the input.
	if len(result.SubStatuses) > 0 {
		result.SubStatuses[0].Component = "modified"
		if original[0].Component == "modified" {
			t.Error("Modifying result sub-statuses should not affect input")
		}
	}
}

func TestHelperTimestamps(t *testing.T) {
	before := time.Now()

	healthy := NewHealthy("clock", "running")
	unhealthy := NewUnhealthy("clock", "tick failed")
	degraded := NewDegraded("clock", "paused")
	aggregated := Aggregate("graph", []Status{healthy})

	after := time.Now()

	for i, status := range []Status{healthy, unhealthy, degraded, aggregated} {
		if status.Timestamp.Before(before) || status.Timestamp.After(after) {
			t.Errorf("Status %d timestamp %v is outside expected range [%v, %v]",
				i, status.Timestamp, before, after)
		}
	}
}
