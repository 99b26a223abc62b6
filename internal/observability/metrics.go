// Package observability wires prometheus collectors and the otel tracer
// provider.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "openaccess"

// Metrics bundles the collectors the server records into. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPHandled        *prometheus.HistogramVec
	TopologyBuild      prometheus.Histogram
	TopologyNodes      prometheus.Histogram
	TopologyDuplicates prometheus.Counter
	TopologyDangling   prometheus.Counter
	TraceSegments      prometheus.Histogram
	CacheLookups       *prometheus.CounterVec
	InventoryImports   *prometheus.CounterVec
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{
		gatherer: gatherer,
		HTTPHandled: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "http_handled_seconds",
			Help:      "Handled HTTP request latency",
		}, []string{"path"}),
		TopologyBuild: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "topology",
			Name:      "build_seconds",
			Help:      "Time spent assembling a topology forest",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		TopologyNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "topology",
			Name:      "expanded_nodes",
			Help:      "Expanded nodes per topology build",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		TopologyDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "topology",
			Name:      "duplicate_nodes_total",
			Help:      "Nodes emitted as duplicates of an earlier visit",
		}),
		TopologyDangling: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "topology",
			Name:      "dangling_connections_total",
			Help:      "Connections skipped because their destination did not resolve",
		}),
		TraceSegments: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fiber",
			Name:      "trace_segments",
			Help:      "Segments per signal trace",
			Buckets:   prometheus.LinearBuckets(1, 4, 10),
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Topology snapshot cache lookups by result",
		}, []string{"result"}),
		InventoryImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "imports_total",
			Help:      "Inventory imports by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.HTTPHandled,
		m.TopologyBuild,
		m.TopologyNodes,
		m.TopologyDuplicates,
		m.TopologyDangling,
		m.TraceSegments,
		m.CacheLookups,
		m.InventoryImports,
	)

	return m
}

// Handler serves the registered collectors
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveHTTP records a handled request for a route path
func (m *Metrics) ObserveHTTP(path string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPHandled.WithLabelValues(path).Observe(d.Seconds())
}

// ObserveBuild records one topology build
func (m *Metrics) ObserveBuild(d time.Duration, nodes, duplicates, dangling int) {
	if m == nil {
		return
	}
	m.TopologyBuild.Observe(d.Seconds())
	m.TopologyNodes.Observe(float64(nodes))
	m.TopologyDuplicates.Add(float64(duplicates))
	m.TopologyDangling.Add(float64(dangling))
}

// ObserveTrace records the length of one signal trace
func (m *Metrics) ObserveTrace(segments int) {
	if m == nil {
		return
	}
	m.TraceSegments.Observe(float64(segments))
}

// CacheResult records a cache hit or miss
func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ImportResult records an inventory import outcome
func (m *Metrics) ImportResult(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.InventoryImports.WithLabelValues(outcome).Inc()
}
