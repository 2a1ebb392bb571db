package vamana

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/vamana/attribute"
	"github.com/hupe1980/vamana/distance"
	"github.com/hupe1980/vamana/graph"
)

// Index is a proximity graph over a fixed set of points.
//
// Points and filter labels are fixed at construction. The graph is mutated
// in place by the build methods, by RobustPrune and by LoadGraph; searches
// may run concurrently with each other but not with a build.
type Index[T distance.Number] struct {
	points *PointStore[T]
	graph  *graph.Graph
	attrs  *attribute.Index

	rngMu sync.Mutex
	rng   *rand.Rand

	medoidMu  sync.Mutex
	medoid    uint32
	hasMedoid bool

	allowDuplicates bool

	logger           *Logger
	metricsCollector MetricsCollector
}

// New creates an index over points. The index keeps a reference to points
// and to the label slice passed with WithFilters; callers must not modify
// them afterwards.
func New[T distance.Number](points [][]T, optFns ...Option) (*Index[T], error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.rng == nil {
		opts.rng = newRand()
	}

	ps, err := NewPointStore(points, opts.allowDuplicates)
	if err != nil {
		return nil, err
	}

	x := &Index[T]{
		points:           ps,
		rng:              opts.rng,
		allowDuplicates:  opts.allowDuplicates,
		logger:           opts.logger,
		metricsCollector: opts.metricsCollector,
	}

	if opts.filters != nil {
		if len(opts.filters) != len(points) {
			return nil, invalidArgument("got %d filters for %d points", len(opts.filters), len(points))
		}

		x.attrs, err = attribute.New(opts.filters)
		if err != nil {
			return nil, translateError(err)
		}
	}

	switch {
	case opts.edges != nil:
		if len(opts.edges) != len(points) {
			return nil, invalidArgument("got %d adjacency lists for %d points", len(opts.edges), len(points))
		}

		x.graph, err = graph.FromAdjacency(opts.edges)
	case opts.randomGraph:
		x.graph, err = graph.NewRandom(len(points), opts.edgeProbability, x.rng)
	default:
		x.graph = graph.New(len(points))
	}

	if err != nil {
		return nil, translateError(err)
	}

	return x, nil
}

// Len returns the number of points.
func (x *Index[T]) Len() int { return x.points.Len() }

// Dim returns the dimension of the points.
func (x *Index[T]) Dim() int { return x.points.Dim() }

// Point returns the point of node id. The slice must not be modified.
func (x *Index[T]) Point(id uint32) ([]T, error) {
	if err := x.checkNode(id); err != nil {
		return nil, err
	}

	return x.points.Point(id), nil
}

// Lookup returns the node id of an indexed point.
func (x *Index[T]) Lookup(p []T) (uint32, bool) {
	return x.points.Lookup(p)
}

// Graph returns the underlying graph.
func (x *Index[T]) Graph() *graph.Graph { return x.graph }

// Filters returns the label table, or nil for an unlabelled index.
func (x *Index[T]) Filters() *attribute.Index { return x.attrs }

// HasFilters reports whether the index was created with WithFilters.
func (x *Index[T]) HasFilters() bool { return x.attrs != nil }

func (x *Index[T]) checkNode(id uint32) error {
	if int(id) >= x.points.Len() {
		return &NodeOutOfRangeError{Node: id, Count: x.points.Len()}
	}

	return nil
}

func (x *Index[T]) checkQuery(q []T) error {
	if len(q) != x.points.Dim() {
		return &DimensionMismatchError{Expected: x.points.Dim(), Actual: len(q)}
	}

	return nil
}

func (x *Index[T]) label(id uint32) float32 {
	v, _ := x.attrs.Label(id)
	return v
}

func (x *Index[T]) intn(n int) int {
	x.rngMu.Lock()
	defer x.rngMu.Unlock()

	return x.rng.Intn(n)
}

func (x *Index[T]) int63() int64 {
	x.rngMu.Lock()
	defer x.rngMu.Unlock()

	return x.rng.Int63()
}

// permutation returns the node ids in uniformly random order.
func (x *Index[T]) permutation() []uint32 {
	x.rngMu.Lock()
	defer x.rngMu.Unlock()

	perm := make([]uint32, x.points.Len())
	for i, j := range x.rng.Perm(len(perm)) {
		perm[i] = uint32(j)
	}

	return perm
}

// withRand runs fn with exclusive use of the random source.
func (x *Index[T]) withRand(fn func(rng *rand.Rand) error) error {
	x.rngMu.Lock()
	defer x.rngMu.Unlock()

	return fn(x.rng)
}
