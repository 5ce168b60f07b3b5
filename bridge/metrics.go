package bridge

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
)

// ingressMetrics holds Prometheus metrics for one Ingress instance.
type ingressMetrics struct {
	received     prometheus.Counter
	delivered    prometheus.Counter
	dropped      prometheus.Counter
	decodeErrors prometheus.Counter
	batchSize    prometheus.Histogram
}

// newIngressMetrics creates and registers ingress metrics. A nil registry
// returns nil metrics, and every recording site nil-checks.
func newIngressMetrics(registry *metric.MetricsRegistry, name string) *ingressMetrics {
	if registry == nil {
		return nil
	}

	labels := prometheus.Labels{"bridge": name}
	m := &ingressMetrics{
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "messages_received_total",
			ConstLabels: labels,
			Help:        "Messages accepted into the ingress inbox",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "values_delivered_total",
			ConstLabels: labels,
			Help:        "Decoded values handed to the output conduit",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "messages_dropped_total",
			ConstLabels: labels,
			Help:        "Messages dropped while stopped, on overflow, or with no wired output",
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "decode_errors_total",
			ConstLabels: labels,
			Help:        "Messages discarded because decoding failed",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "batch_size",
			ConstLabels: labels,
			Help:        "Distribution of inbox drain batch sizes",
			Buckets:     []float64{1, 5, 10, 20, 50, 100},
		}),
	}

	serviceName := "bridge_" + name
	registry.RegisterCounter(serviceName, "messages_received", m.received)
	registry.RegisterCounter(serviceName, "values_delivered", m.delivered)
	registry.RegisterCounter(serviceName, "messages_dropped", m.dropped)
	registry.RegisterCounter(serviceName, "decode_errors", m.decodeErrors)
	registry.RegisterHistogram(serviceName, "batch_size", m.batchSize)

	return m
}

// egressMetrics holds Prometheus metrics for one Egress instance.
type egressMetrics struct {
	published      prometheus.Counter
	publishErrors  prometheus.Counter
	encodeErrors   prometheus.Counter
	publishLatency prometheus.Histogram
}

// newEgressMetrics creates and registers egress metrics. A nil registry
// returns nil metrics, and every recording site nil-checks.
func newEgressMetrics(registry *metric.MetricsRegistry, name string) *egressMetrics {
	if registry == nil {
		return nil
	}

	labels := prometheus.Labels{"bridge": name}
	m := &egressMetrics{
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "values_published_total",
			ConstLabels: labels,
			Help:        "Values published to the subject",
		}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "publish_errors_total",
			ConstLabels: labels,
			Help:        "Failed publish attempts, including retried ones",
		}),
		encodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "encode_errors_total",
			ConstLabels: labels,
			Help:        "Values discarded because encoding failed",
		}),
		publishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "flowruntime",
			Subsystem:   "bridge",
			Name:        "publish_duration_seconds",
			ConstLabels: labels,
			Help:        "Time to publish one value, including retries",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}

	serviceName := "bridge_" + name
	registry.RegisterCounter(serviceName, "values_published", m.published)
	registry.RegisterCounter(serviceName, "publish_errors", m.publishErrors)
	registry.RegisterCounter(serviceName, "encode_errors", m.encodeErrors)
	registry.RegisterHistogram(serviceName, "publish_latency", m.publishLatency)

	return m
}
