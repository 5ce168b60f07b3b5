package buffer

import (
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// bufferMetrics mirrors the statistics counters into Prometheus. The
// component label carries the owning endpoint's prefix so scrapes can tell
// one inbox from another.
type bufferMetrics struct {
	writes    prometheus.Counter
	reads     prometheus.Counter
	peeks     prometheus.Counter
	overflows prometheus.Counter
	drops     prometheus.Counter

	size        prometheus.Gauge
	utilization prometheus.Gauge
}

func newCounter(prefix, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "flowruntime",
		Subsystem:   "buffer",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

func newGauge(prefix, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "flowruntime",
		Subsystem:   "buffer",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

// newBufferMetrics builds and registers the metric set. Registration errors
// propagate so a name collision surfaces at construction instead of as a
// silent scrape gap.
func newBufferMetrics(registry *metric.MetricsRegistry, prefix string) (*bufferMetrics, error) {
	m := &bufferMetrics{
		writes:      newCounter(prefix, "writes_total", "Total number of buffer write operations"),
		reads:       newCounter(prefix, "reads_total", "Total number of buffer read operations"),
		peeks:       newCounter(prefix, "peeks_total", "Total number of buffer peek operations"),
		overflows:   newCounter(prefix, "overflows_total", "Total number of buffer overflow events"),
		drops:       newCounter(prefix, "drops_total", "Total number of items dropped due to overflow"),
		size:        newGauge(prefix, "size", "Current number of items in buffer"),
		utilization: newGauge(prefix, "utilization", "Buffer utilization as a fraction (0.0 to 1.0)"),
	}

	registrations := []struct {
		name      string
		collector prometheus.Collector
		isGauge   bool
	}{
		{"buffer_writes", m.writes, false},
		{"buffer_reads", m.reads, false},
		{"buffer_peeks", m.peeks, false},
		{"buffer_overflows", m.overflows, false},
		{"buffer_drops", m.drops, false},
		{"buffer_size", m.size, true},
		{"buffer_utilization", m.utilization, true},
	}
	for _, r := range registrations {
		var err error
		if r.isGauge {
			err = registry.RegisterGauge(prefix, r.name, r.collector.(prometheus.Gauge))
		} else {
			err = registry.RegisterCounter(prefix, r.name, r.collector.(prometheus.Counter))
		}
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *bufferMetrics) recordWrite(size, capacity int) {
	m.writes.Inc()
	m.updateSize(size, capacity)
}

func (m *bufferMetrics) recordRead(size, capacity int) {
	m.reads.Inc()
	m.updateSize(size, capacity)
}

func (m *bufferMetrics) recordPeek() {
	m.peeks.Inc()
}

func (m *bufferMetrics) recordOverflow() {
	m.overflows.Inc()
}

func (m *bufferMetrics) recordDrop() {
	m.drops.Inc()
}

func (m *bufferMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}
