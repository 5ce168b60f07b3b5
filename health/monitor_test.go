package health

import (
	"sync"
	"testing"
	"time"
)

func TestNewMonitor(t *testing.T) {
	monitor := NewMonitor()

	if monitor == nil {
		t.Fatal("NewMonitor() returned nil")
	}
	if monitor.statuses == nil {
		t.Error("NewMonitor() should initialize statuses map")
	}
	if monitor.Count() != 0 {
		t.Errorf("New monitor should track 0 runtimes, got %d", monitor.Count())
	}
}

func TestMonitor_Update(t *testing.T) {
	monitor := NewMonitor()

	monitor.Update("clock-gen", Status{
		Component: "clock-gen",
		Status:    "healthy",
		Message:   "running",
	})

	retrieved, exists := monitor.Get("clock-gen")
	if !exists {
		t.Fatal("Runtime should exist after update")
	}
	if retrieved.Component != "clock-gen" {
		t.Errorf("Expected component clock-gen, got %s", retrieved.Component)
	}
	if retrieved.Status != "healthy" {
		t.Errorf("Expected status healthy, got %s", retrieved.Status)
	}
	if retrieved.Timestamp.IsZero() {
		t.Error("Update should stamp the time when the caller did not")
	}
}

func TestMonitor_UpdateNormalizesName(t *testing.T) {
	monitor := NewMonitor()

	// The status carries a stale component label; the update key wins.
	monitor.Update("counter-gen", Status{
		Component: "old-name",
		Status:    "healthy",
	})

	retrieved, exists := monitor.Get("counter-gen")
	if !exists {
		t.Fatal("Runtime should exist under the update key")
	}
	if retrieved.Component != "counter-gen" {
		t.Errorf("Expected component counter-gen, got %s", retrieved.Component)
	}
}

func TestMonitor_UpdateConvenienceMethods(t *testing.T) {
	monitor := NewMonitor()

	monitor.UpdateHealthy("clock", "running")
	healthyStatus, exists := monitor.Get("clock")
	if !exists || !healthyStatus.IsHealthy() {
		t.Error("UpdateHealthy should record the runtime as healthy")
	}
	if healthyStatus.Message != "running" {
		t.Errorf("Expected message 'running', got %s", healthyStatus.Message)
	}

	monitor.UpdateUnhealthy("threshold", "tick failed")
	unhealthyStatus, exists := monitor.Get("threshold")
	if !exists || !unhealthyStatus.IsUnhealthy() {
		t.Error("UpdateUnhealthy should record the runtime as unhealthy")
	}
	if unhealthyStatus.Message != "tick failed" {
		t.Errorf("Expected message 'tick failed', got %s", unhealthyStatus.Message)
	}

	monitor.UpdateDegraded("display", "paused")
	degradedStatus, exists := monitor.Get("display")
	if !exists || !degradedStatus.IsDegraded() {
		t.Error("UpdateDegraded should record the runtime as degraded")
	}
	if degradedStatus.Message != "paused" {
		t.Errorf("Expected message 'paused', got %s", degradedStatus.Message)
	}
}

func TestMonitor_Get(t *testing.T) {
	monitor := NewMonitor()

	if _, exists := monitor.Get("unknown"); exists {
		t.Error("Getting an untracked runtime should return false")
	}

	monitor.UpdateHealthy("clock", "running")
	status, exists := monitor.Get("clock")
	if !exists {
		t.Fatal("Getting a tracked runtime should return true")
	}
	if status.Component != "clock" {
		t.Errorf("Expected component clock, got %s", status.Component)
	}
}

func TestMonitor_GetAll(t *testing.T) {
	monitor := NewMonitor()

	if all := monitor.GetAll(); len(all) != 0 {
		t.Errorf("Empty monitor should return empty map, got %d items", len(all))
	}

	monitor.UpdateHealthy("clock", "running")
	monitor.UpdateUnhealthy("threshold", "tick failed")
	monitor.UpdateDegraded("display", "paused")

	all := monitor.GetAll()
	if len(all) != 3 {
		t.Errorf("Expected 3 runtimes, got %d", len(all))
	}
	for _, name := range []string{"clock", "threshold", "display"} {
		if _, exists := all[name]; !exists {
			t.Errorf("Runtime %s should be in GetAll result", name)
		}
	}

	// Mutating the snapshot must not leak back into the monitor.
	all["clock"] = Status{Component: "modified"}
	original, _ := monitor.Get("clock")
	if original.Component == "modified" {
		t.Error("GetAll should return a copy, not the internal map")
	}
}

func TestMonitor_Remove(t *testing.T) {
	monitor := NewMonitor()

	monitor.Remove("unknown")

	monitor.UpdateHealthy("clock", "running")
	if monitor.Count() != 1 {
		t.Error("Should track 1 runtime after adding")
	}

	monitor.Remove("clock")
	if monitor.Count() != 0 {
		t.Error("Should track 0 runtimes after removing")
	}
	if _, exists := monitor.Get("clock"); exists {
		t.Error("Runtime should not exist after removal")
	}
}

func TestMonitor_AggregateHealth(t *testing.T) {
	monitor := NewMonitor()

	aggregate := monitor.AggregateHealth("graph")
	if !aggregate.IsHealthy() {
		t.Error("Empty monitor should aggregate as healthy")
	}
	if aggregate.Component != "graph" {
		t.Errorf("Expected component graph, got %s", aggregate.Component)
	}

	monitor.UpdateHealthy("clock", "running")
	monitor.UpdateHealthy("counter", "running")
	if aggregate = monitor.AggregateHealth("graph"); !aggregate.IsHealthy() {
		t.Error("All healthy runtimes should aggregate as healthy")
	}

	monitor.UpdateUnhealthy("threshold", "tick failed")
	if aggregate = monitor.AggregateHealth("graph"); !aggregate.IsUnhealthy() {
		t.Error("Should aggregate as unhealthy when any runtime is unhealthy")
	}

	monitor.Remove("threshold")
	monitor.UpdateDegraded("display", "paused")
	if aggregate = monitor.AggregateHealth("graph"); !aggregate.IsDegraded() {
		t.Error("Should aggregate as degraded when paused but not failed")
	}
}

func TestMonitor_ListComponents(t *testing.T) {
	monitor := NewMonitor()

	if components := monitor.ListComponents(); len(components) != 0 {
		t.Errorf("Empty monitor should return empty list, got %d items", len(components))
	}

	monitor.UpdateHealthy("clock", "running")
	monitor.UpdateUnhealthy("threshold", "tick failed")

	components := monitor.ListComponents()
	if len(components) != 2 {
		t.Errorf("Expected 2 runtimes, got %d", len(components))
	}

	seen := make(map[string]bool)
	for _, name := range components {
		seen[name] = true
	}
	for _, expected := range []string{"clock", "threshold"} {
		if !seen[expected] {
			t.Errorf("Runtime %s should be in list", expected)
		}
	}
}

func TestMonitor_Count(t *testing.T) {
	monitor := NewMonitor()

	if monitor.Count() != 0 {
		t.Errorf("New monitor should have count 0, got %d", monitor.Count())
	}

	monitor.UpdateHealthy("clock", "running")
	if monitor.Count() != 1 {
		t.Errorf("Expected count 1, got %d", monitor.Count())
	}

	monitor.UpdateHealthy("counter", "running")
	if monitor.Count() != 2 {
		t.Errorf("Expected count 2, got %d", monitor.Count())
	}

	monitor.Remove("clock")
	if monitor.Count() != 1 {
		t.Errorf("Expected count 1 after removal, got %d", monitor.Count())
	}
}

func TestMonitor_Clear(t *testing.T) {
	monitor := NewMonitor()

	monitor.UpdateHealthy("clock", "running")
	monitor.UpdateUnhealthy("threshold", "tick failed")
	monitor.UpdateDegraded("display", "paused")

	if monitor.Count() != 3 {
		t.Errorf("Expected 3 runtimes before clear, got %d", monitor.Count())
	}

	monitor.Clear()

	if monitor.Count() != 0 {
		t.Errorf("Expected 0 runtimes after clear, got %d", monitor.Count())
	}
	if all := monitor.GetAll(); len(all) != 0 {
		t.Errorf("GetAll should return empty map after clear, got %d items", len(all))
	}
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	monitor := NewMonitor()
	numGoroutines := 10
	numOperationsPerGoroutine := 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			for j := 0; j < numOperationsPerGoroutine; j++ {
				switch j % 4 {
				case 0:
					monitor.UpdateHealthy("clock", "running")
				case 1:
					monitor.UpdateUnhealthy("clock", "tick failed")
				case 2:
					_, _ = monitor.Get("clock")
				case 3:
					_ = monitor.GetAll()
				}
			}
		}()
	}
	wg.Wait()

	monitor.UpdateHealthy("final-check", "running")
	status, exists := monitor.Get("final-check")
	if !exists || status.Component != "final-check" {
		t.Error("Monitor should still be functional after concurrent access")
	}
}

func TestMonitor_ConcurrentAggregation(t *testing.T) {
	monitor := NewMonitor()
	numGoroutines := 5

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	// One goroutine aggregates continuously while the rest churn the map.
	for i := 0; i < numGoroutines; i++ {
		if i == 0 {
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					_ = monitor.AggregateHealth("graph")
					time.Sleep(time.Microsecond)
				}
			}()
			continue
		}
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if j%2 == 0 {
					monitor.UpdateHealthy("clock", "running")
				} else {
					monitor.Remove("clock")
				}
				time.Sleep(time.Microsecond)
			}
		}()
	}
	wg.Wait()

	aggregate := monitor.AggregateHealth("graph")
	if aggregate.Component != "graph" {
		t.Error("Final aggregation should work correctly")
	}
}
