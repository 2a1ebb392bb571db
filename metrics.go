package vamana

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see package
// metrics/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after each build.
	// nodes is the size of the index, err is nil if successful.
	RecordBuild(variant Variant, nodes int, duration time.Duration, err error)

	// RecordSearch is called after each search operation.
	// k is the number of neighbors requested, visited the number of nodes
	// expanded, err is nil if successful.
	RecordSearch(k, visited int, duration time.Duration, err error)

	// RecordPrune is called after each robust prune with the number of
	// candidates kept as edges and the number dropped by the alpha rule.
	RecordPrune(kept, dropped int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(Variant, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordPrune(int, int)                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildTotalNanos  atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	SearchVisited    atomic.Int64
	PruneCount       atomic.Int64
	PruneKept        atomic.Int64
	PruneDropped     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_ Variant, _ int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())

	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, visited int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.SearchVisited.Add(int64(visited))

	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordPrune implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPrune(kept, dropped int) {
	b.PruneCount.Add(1)
	b.PruneKept.Add(int64(kept))
	b.PruneDropped.Add(int64(dropped))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		SearchCount:      b.SearchCount.Load(),
		SearchErrors:     b.SearchErrors.Load(),
		SearchAvgNanos:   avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		SearchAvgVisited: avg(b.SearchVisited.Load(), b.SearchCount.Load()),
		PruneCount:       b.PruneCount.Load(),
		PruneKept:        b.PruneKept.Load(),
		PruneDropped:     b.PruneDropped.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}

	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount       int64
	BuildErrors      int64
	SearchCount      int64
	SearchErrors     int64
	SearchAvgNanos   int64
	SearchAvgVisited int64
	PruneCount       int64
	PruneKept        int64
	PruneDropped     int64
}
