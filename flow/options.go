package flow

import (
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
)

// Option configures conduit behavior using the functional options pattern.
type Option[T any] func(*conduitOptions[T])

// conduitOptions holds internal configuration for conduit instances.
type conduitOptions[T any] struct {
	// metricsReg is optional - if provided, conduit activity is exposed as
	// Prometheus metrics under metricsName.
	metricsReg  *metric.MetricsRegistry
	metricsName string
}

// WithMetrics enables Prometheus metrics export for conduit activity.
// If registry is nil or name is empty, this option is ignored.
func WithMetrics[T any](registry *metric.MetricsRegistry, name string) Option[T] {
	return func(opts *conduitOptions[T]) {
		if registry != nil && name != "" {
			opts.metricsReg = registry
			opts.metricsName = name
		}
	}
}

// applyOptions applies functional options to create final conduit configuration.
func applyOptions[T any](options ...Option[T]) *conduitOptions[T] {
	opts := &conduitOptions[T]{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
