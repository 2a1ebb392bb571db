// Package prometheus exports index metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc := vamanaprom.NewCollector(reg)
//	idx, _ := vamana.New(points, vamana.WithMetricsCollector(mc))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/vamana"
)

const namespace = "vamana"

// Collector implements vamana.MetricsCollector with Prometheus metrics.
type Collector struct {
	buildDuration  *prometheus.HistogramVec
	buildNodes     *prometheus.GaugeVec
	builds         *prometheus.CounterVec
	searchDuration prometheus.Histogram
	searchVisited  prometheus.Histogram
	searches       *prometheus.CounterVec
	pruneKept      prometheus.Histogram
	pruneDropped   prometheus.Counter
}

var _ vamana.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg. A nil reg
// uses the default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of graph builds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"variant"}),
		buildNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_nodes",
			Help:      "Number of nodes in the last build.",
		}, []string{"variant"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Number of builds by outcome.",
		}, []string{"variant", "status"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of searches.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		searchVisited: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_visited_nodes",
			Help:      "Nodes expanded per search.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Number of searches by outcome.",
		}, []string{"status"}),
		pruneKept: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prune_kept_edges",
			Help:      "Edges kept per robust prune.",
			Buckets:   prometheus.LinearBuckets(0, 8, 17),
		}),
		pruneDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prune_dropped_candidates_total",
			Help:      "Candidates dropped by the alpha rule.",
		}),
	}

	reg.MustRegister(
		c.buildDuration,
		c.buildNodes,
		c.builds,
		c.searchDuration,
		c.searchVisited,
		c.searches,
		c.pruneKept,
		c.pruneDropped,
	)

	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}

// RecordBuild implements vamana.MetricsCollector.
func (c *Collector) RecordBuild(variant vamana.Variant, nodes int, duration time.Duration, err error) {
	v := variant.String()

	c.builds.WithLabelValues(v, status(err)).Inc()

	if err == nil {
		c.buildDuration.WithLabelValues(v).Observe(duration.Seconds())
		c.buildNodes.WithLabelValues(v).Set(float64(nodes))
	}
}

// RecordSearch implements vamana.MetricsCollector.
func (c *Collector) RecordSearch(_ int, visited int, duration time.Duration, err error) {
	c.searches.WithLabelValues(status(err)).Inc()

	if err == nil {
		c.searchDuration.Observe(duration.Seconds())
		c.searchVisited.Observe(float64(visited))
	}
}

// RecordPrune implements vamana.MetricsCollector.
func (c *Collector) RecordPrune(kept, dropped int) {
	c.pruneKept.Observe(float64(kept))
	c.pruneDropped.Add(float64(dropped))
}
