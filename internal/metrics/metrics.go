// Package metrics exposes engine instrumentation through Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "observatory"

// Metrics holds the engine collectors on a private registry, so several
// engines can run in one process.
type Metrics struct {
	registry *prometheus.Registry

	RecomputesTotal   prometheus.Counter
	RecomputeDuration prometheus.Histogram
	Unresolved        *prometheus.GaugeVec
	DanglingLinks     prometheus.Gauge
	RecordsLoaded     *prometheus.GaugeVec
}

// New creates and registers the collectors. With runtime set, Go and process
// collectors are registered too.
func New(runtime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecomputesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "Total number of region summary recomputes",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_ms",
			Help:      "Region summary recompute duration in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100, 200},
		}),
		Unresolved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unresolved_records",
			Help:      "Records that passed the filter but matched no region, by kind",
		}, []string{"kind"}),
		DanglingLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dangling_links",
			Help:      "Linked policy IDs of filtered FDI records that resolve to no policy",
		}),
		RecordsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "Records loaded per kind",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.RecomputesTotal,
		m.RecomputeDuration,
		m.Unresolved,
		m.DanglingLinks,
		m.RecordsLoaded,
	)
	if runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// ObserveRecompute records one recompute
func (m *Metrics) ObserveRecompute(d time.Duration) {
	if m == nil {
		return
	}
	m.RecomputesTotal.Inc()
	m.RecomputeDuration.Observe(float64(d) / float64(time.Millisecond))
}

// SetUnresolved publishes the unresolved count of one kind
func (m *Metrics) SetUnresolved(kind string, n int) {
	if m == nil {
		return
	}
	m.Unresolved.WithLabelValues(kind).Set(float64(n))
}

// SetLoaded publishes the loaded record count of one kind
func (m *Metrics) SetLoaded(kind string, n int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.WithLabelValues(kind).Set(float64(n))
}

// SetDangling publishes the dangling link count of the current filter
func (m *Metrics) SetDangling(n int) {
	if m == nil {
		return
	}
	m.DanglingLinks.Set(float64(n))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
