package vamana

import (
	"math/rand"
	"time"
)

type options struct {
	rng              *rand.Rand
	filters          []float32
	edges            [][]uint32
	edgeProbability  float64
	randomGraph      bool
	allowDuplicates  bool
	logger           *Logger
	metricsCollector MetricsCollector
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures New.
type Option func(*options)

// WithSeed seeds the index's random source. Builds with Workers = 1 are
// reproducible for a fixed seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // not used for security
	}
}

// WithRand sets the index's random source. The index takes ownership of r.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithFilters assigns one filter label per point, enabling filtered search
// and the FilteredVamana and StitchedVamana builds.
func WithFilters(labels []float32) Option {
	return func(o *options) {
		o.filters = labels
	}
}

// WithEdges starts the index from the given out-neighbor lists instead of
// an empty graph.
func WithEdges(adj [][]uint32) Option {
	return func(o *options) {
		o.edges = adj
	}
}

// WithRandomGraph starts the index from a random graph in which each
// directed edge exists with probability p.
func WithRandomGraph(p float64) Option {
	return func(o *options) {
		o.randomGraph = true
		o.edgeProbability = p
	}
}

// AllowDuplicates accepts points with identical coordinates. Lookup then
// returns the lowest id among the duplicates.
func AllowDuplicates() Option {
	return func(o *options) {
		o.allowDuplicates = true
	}
}

// WithLogger configures structured logging.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}

		o.logger = l
	}
}

// WithMetricsCollector configures metrics collection.
//
// If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}

		o.metricsCollector = mc
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // not used for security
}
