package runtime

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhaukoos/CodeNodeIO-sub010/health"
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
)

// Registry tracks the runtimes of one flow graph instance and broadcasts
// lifecycle operations across them. Broadcast order is unspecified; runtimes
// coordinate through conduit closure, not through start or stop order.
type Registry struct {
	logger  *slog.Logger
	metrics *metric.Metrics

	mu       sync.RWMutex
	runtimes map[string]Runtime
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger   *slog.Logger
	registry *metric.MetricsRegistry
}

// WithRegistryLogger sets the structured logger for registry operations.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistryMetrics exposes registry gauges (registered and running
// runtime counts) and per-runtime health gauges through the shared metrics
// registry.
func WithRegistryMetrics(registry *metric.MetricsRegistry) RegistryOption {
	return func(o *registryOptions) {
		o.registry = registry
	}
}

// NewRegistry constructs an empty per-graph registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := &registryOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{
		logger:   o.logger.With("component", "registry"),
		runtimes: make(map[string]Runtime),
	}
	if o.registry != nil {
		r.metrics = o.registry.CoreMetrics()
		r.registerGauges(o.registry)
	}
	return r
}

// registerGauges exposes pull-style counts so scrape always reflects the
// live registry without update plumbing.
func (r *Registry) registerGauges(reg *metric.MetricsRegistry) {
	registered := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "flowruntime",
		Subsystem: "registry",
		Name:      "registered_runtimes",
		Help:      "Number of runtimes currently registered",
	}, func() float64 {
		return float64(r.Len())
	})
	running := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "flowruntime",
		Subsystem: "registry",
		Name:      "running_runtimes",
		Help:      "Number of registered runtimes in the running state",
	}, func() float64 {
		n := 0
		for _, state := range r.States() {
			if state == StateRunning {
				n++
			}
		}
		return float64(n)
	})

	if err := reg.PrometheusRegistry().Register(registered); err != nil {
		r.logger.Warn("failed to register registry gauge", "error", err)
	}
	if err := reg.PrometheusRegistry().Register(running); err != nil {
		r.logger.Warn("failed to register registry gauge", "error", err)
	}
}

// Register adds a runtime under its name. Registering a name that is
// already present is a no-op, so graph assembly can be replayed safely.
func (r *Registry) Register(rt Runtime) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := rt.Name()
	if _, exists := r.runtimes[name]; exists {
		r.logger.Debug("runtime already registered", "runtime", name)
		return
	}
	r.runtimes[name] = rt
	r.logger.Debug("runtime registered", "runtime", name)
}

// Deregister removes a runtime by name. The runtime is not stopped.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runtimes, name)
}

// Get returns the registered runtime with the given name.
func (r *Registry) Get(name string) (Runtime, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.runtimes[name]
	return rt, ok
}

// Names returns the registered runtime names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.runtimes))
	for name := range r.runtimes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered runtimes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runtimes)
}

func (r *Registry) snapshot() []Runtime {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rts := make([]Runtime, 0, len(r.runtimes))
	for _, rt := range r.runtimes {
		rts = append(rts, rt)
	}
	return rts
}

// StartAll starts every registered runtime. Failures do not abort the
// broadcast; all start errors are joined into the returned error.
func (r *Registry) StartAll(ctx context.Context) error {
	var errs []error
	for _, rt := range r.snapshot() {
		if err := rt.Start(ctx); err != nil {
			r.logger.Error("failed to start runtime", "runtime", rt.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	r.logger.Info("started all runtimes", "count", r.Len(), "failures", len(errs))
	return stderrors.Join(errs...)
}

// StopAll stops every registered runtime concurrently, each bounded by
// timeout. All stop errors are joined into the returned error.
func (r *Registry) StopAll(timeout time.Duration) error {
	rts := r.snapshot()

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	for _, rt := range rts {
		wg.Add(1)
		go func(rt Runtime) {
			defer wg.Done()
			if err := rt.Stop(timeout); err != nil {
				r.logger.Error("failed to stop runtime", "runtime", rt.Name(), "error", err)
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}(rt)
	}
	wg.Wait()

	r.logger.Info("stopped all runtimes", "count", len(rts), "failures", len(errs))
	return stderrors.Join(errs...)
}

// PauseAll pauses every registered runtime. Runtimes that are not running
// ignore the call.
func (r *Registry) PauseAll() {
	for _, rt := range r.snapshot() {
		rt.Pause()
	}
	r.logger.Info("paused all runtimes")
}

// ResumeAll resumes every registered runtime. Runtimes that are not paused
// ignore the call.
func (r *Registry) ResumeAll() {
	for _, rt := range r.snapshot() {
		rt.Resume()
	}
	r.logger.Info("resumed all runtimes")
}

// ResetAll stops and resets every registered runtime concurrently.
func (r *Registry) ResetAll(timeout time.Duration) error {
	rts := r.snapshot()

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	for _, rt := range rts {
		wg.Add(1)
		go func(rt Runtime) {
			defer wg.Done()
			if err := rt.Reset(timeout); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}(rt)
	}
	wg.Wait()
	return stderrors.Join(errs...)
}

// States returns a point-in-time snapshot of every runtime's state.
func (r *Registry) States() map[string]State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]State, len(r.runtimes))
	for name, rt := range r.runtimes {
		states[name] = rt.State()
	}
	return states
}

// PublishHealth writes one status per runtime into the monitor. Running and
// cleanly idle runtimes report healthy, paused report degraded, and a
// runtime terminated by a tick failure reports unhealthy with a sanitized
// failure message.
func (r *Registry) PublishHealth(monitor *health.Monitor) {
	for _, rt := range r.snapshot() {
		name := rt.Name()
		var status health.Status
		switch {
		case rt.Err() != nil:
			status = health.FromError(name, rt.Err())
		case rt.State() == StateRunning:
			status = health.NewHealthy(name, "running")
		case rt.State() == StatePaused:
			status = health.NewDegraded(name, "paused")
		default:
			status = health.NewHealthy(name, "idle")
		}
		monitor.Update(name, status)
		if r.metrics != nil {
			r.metrics.RecordHealthStatus(name, status.Healthy)
		}
	}
}
