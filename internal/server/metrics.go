package server

import (
	"github.com/huangsam/codescore/internal/contract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "codescore"

// Metrics holds the Prometheus collectors served on /metrics.
// Each server owns its registry so tests never share global state.
type Metrics struct {
	registry *prometheus.Registry

	// requests counts HTTP requests. Labels: method, route, status
	requests *prometheus.CounterVec

	// latency measures HTTP request duration. Labels: method, route
	latency *prometheus.HistogramVec

	// analyses counts analyze calls. Labels: outcome (ok, failed)
	analyses *prometheus.CounterVec

	// deliveries counts webhook deliveries. Labels: status
	deliveries *prometheus.CounterVec
}

// NewMetrics creates and registers the server collectors, including a
// collector that reads the analyzer's result cache counters at scrape time.
func NewMetrics(analyzer contract.CodeAnalyzer) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "analyses_total",
			Help:      "Total analyze calls by outcome",
		}, []string{"outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Total webhook deliveries by status",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.requests, m.latency, m.analyses, m.deliveries,
		newCacheCollector(analyzer),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

type cacheCollector struct {
	analyzer  contract.CodeAnalyzer
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	size      *prometheus.Desc
	maxSize   *prometheus.Desc
}

func newCacheCollector(analyzer contract.CodeAnalyzer) *cacheCollector {
	name := func(n string) string { return prometheus.BuildFQName(metricsNamespace, "cache", n) }
	return &cacheCollector{
		analyzer:  analyzer,
		hits:      prometheus.NewDesc(name("hits_total"), "Result cache hits", nil, nil),
		misses:    prometheus.NewDesc(name("misses_total"), "Result cache misses", nil, nil),
		evictions: prometheus.NewDesc(name("evictions_total"), "Result cache evictions and expirations", nil, nil),
		size:      prometheus.NewDesc(name("entries"), "Entries currently held in the result cache", nil, nil),
		maxSize:   prometheus.NewDesc(name("max_entries"), "Capacity of the result cache", nil, nil),
	}
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.size
	ch <- c.maxSize
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.analyzer.CacheStats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Evictions))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(stats.CurrentSize))
	ch <- prometheus.MustNewConstMetric(c.maxSize, prometheus.GaugeValue, float64(stats.MaxSize))
}
