package runtime

import (
	"log/slog"

	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
)

// Option configures a runtime at construction.
type Option func(*options)

type options struct {
	description string
	posX, posY  float64
	logger      *slog.Logger
	metrics     *metric.Metrics
	resetFn     func()
}

func defaultOptions() *options {
	return &options{
		logger: slog.Default(),
	}
}

func applyOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDescription sets a human-readable description for the runtime.
func WithDescription(description string) Option {
	return func(o *options) {
		o.description = description
	}
}

// WithPosition records editor canvas coordinates for the runtime. The
// coordinates have no execution effect and exist for observability.
func WithPosition(x, y float64) Option {
	return func(o *options) {
		o.posX = x
		o.posY = y
	}
}

// WithLogger sets the structured logger. The runtime name is attached as a
// logger attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics wires the runtime to the shared metrics registry. Without
// this option no metrics are recorded.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *options) {
		if registry != nil {
			o.metrics = registry.CoreMetrics()
		}
	}
}

// WithReset registers a hook invoked by Reset after the control job has
// stopped. Use it to restore node-local accumulator state to construction
// defaults.
func WithReset(fn func()) Option {
	return func(o *options) {
		o.resetFn = fn
	}
}
