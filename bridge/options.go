package bridge

import (
	"log/slog"

	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
	"github.com/dhaukoos/CodeNodeIO-sub010/pkg/retry"
)

// Inbox and batch sizing follow the network input defaults: a deep inbox
// absorbs bursts from the dispatch goroutine, and the loop drains it in
// bounded batches.
const (
	defaultInboxCapacity = 5000
	ingressBatchSize     = 100
)

// Option configures a bridge runtime at construction. Options are shared
// between Ingress and Egress; WithDecoder and WithInboxCapacity apply only
// to Ingress, WithEncoder and WithRetry only to Egress.
type Option[T any] func(*options[T])

type options[T any] struct {
	logger        *slog.Logger
	registry      *metric.MetricsRegistry
	decode        func([]byte) (T, error)
	encode        func(T) ([]byte, error)
	retryConfig   retry.Config
	inboxCapacity int
}

func defaultOptions[T any]() *options[T] {
	return &options[T]{
		logger:        slog.Default(),
		retryConfig:   retry.DefaultConfig(),
		inboxCapacity: defaultInboxCapacity,
	}
}

func applyOptions[T any](opts ...Option[T]) *options[T] {
	o := defaultOptions[T]()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLogger sets the structured logger. The runtime name is attached as a
// logger attribute.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(o *options[T]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics wires the bridge runtime to the shared metrics registry:
// per-bridge counters, inbox instrumentation, and the core runtime state
// gauge. Without this option no metrics are recorded.
func WithMetrics[T any](registry *metric.MetricsRegistry) Option[T] {
	return func(o *options[T]) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// WithDecoder installs a custom wire decoder for an Ingress. The default
// decoder unmarshals JSON into T.
func WithDecoder[T any](decode func([]byte) (T, error)) Option[T] {
	return func(o *options[T]) {
		if decode != nil {
			o.decode = decode
		}
	}
}

// WithEncoder installs a custom wire encoder for an Egress. The default
// encoder marshals T as JSON.
func WithEncoder[T any](encode func(T) ([]byte, error)) Option[T] {
	return func(o *options[T]) {
		if encode != nil {
			o.encode = encode
		}
	}
}

// WithRetry sets the bounded retry policy an Egress applies to transient
// publish failures. The default is retry.DefaultConfig.
func WithRetry[T any](cfg retry.Config) Option[T] {
	return func(o *options[T]) {
		o.retryConfig = cfg
	}
}

// WithInboxCapacity sets the Ingress inbox depth. Values beyond the capacity
// displace the oldest buffered message.
func WithInboxCapacity[T any](capacity int) Option[T] {
	return func(o *options[T]) {
		if capacity > 0 {
			o.inboxCapacity = capacity
		}
	}
}
