package vamana

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/vamana/graph"
)

// Variant names a construction algorithm.
type Variant int

const (
	// VariantVamana builds an unfiltered graph.
	VariantVamana Variant = iota
	// VariantFiltered builds a label-aware graph directly.
	VariantFiltered
	// VariantStitched builds one graph per label and stitches them.
	VariantStitched
)

func (v Variant) String() string {
	switch v {
	case VariantVamana:
		return "vamana"
	case VariantFiltered:
		return "filtered"
	case VariantStitched:
		return "stitched"
	default:
		return fmt.Sprintf("Unknown(%d)", int(v))
	}
}

// ParseVariant maps a variant name to a Variant.
func ParseVariant(s string) (Variant, error) {
	for _, v := range []Variant{VariantVamana, VariantFiltered, VariantStitched} {
		if v.String() == s {
			return v, nil
		}
	}

	return 0, invalidArgument("unknown variant %q", s)
}

// Entry selects the start node of an unfiltered build.
type Entry int

const (
	// EntryMedoid uses the exact medoid.
	EntryMedoid Entry = iota
	// EntryRandom uses a random node.
	EntryRandom
)

// BuildOptions controls graph construction.
type BuildOptions struct {
	// Alpha is the pruning factor (>= 1).
	Alpha float64

	// L is the search budget used to collect candidates.
	L int

	// R is the out-degree bound.
	R int

	// Regularity is the degree the initial graph is brought to before the
	// first pass. Zero means R.
	Regularity int

	// Entry selects the start node of unfiltered builds.
	Entry Entry

	// Tau is the number of seed nodes sampled per label.
	Tau int

	// SubL and SubR are the budget and degree bound of the per-label graphs
	// built by StitchedVamana.
	SubL int
	SubR int

	// StitchedR is the degree bound of the stitched graph.
	StitchedR int

	// Workers is the number of permutation steps run concurrently.
	// Builds with one worker are reproducible for a fixed seed.
	Workers int

	// ProgressInterval throttles progress logging. Zero disables it.
	ProgressInterval time.Duration
}

// DefaultBuildOptions contains sensible default values.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Alpha:            1.2,
		L:                100,
		R:                64,
		Entry:            EntryMedoid,
		Tau:              1,
		SubL:             100,
		SubR:             32,
		StitchedR:        64,
		Workers:          1,
		ProgressInterval: 5 * time.Second,
	}
}

func (o *BuildOptions) validate(v Variant) error {
	if math.IsNaN(o.Alpha) || o.Alpha < 1 {
		return invalidArgument("alpha must be >= 1, got %g", o.Alpha)
	}

	if o.L < 1 {
		return invalidArgument("L must be positive, got %d", o.L)
	}

	if o.R < 0 || o.Regularity < 0 {
		return invalidArgument("degree bounds must not be negative, got R=%d regularity=%d", o.R, o.Regularity)
	}

	if o.Workers < 0 {
		return invalidArgument("workers must not be negative, got %d", o.Workers)
	}

	if v == VariantVamana {
		return nil
	}

	if o.Tau < 1 {
		return invalidArgument("tau must be positive, got %d", o.Tau)
	}

	if v == VariantStitched {
		if o.SubL < 1 {
			return invalidArgument("SubL must be positive, got %d", o.SubL)
		}

		if o.SubR < 0 || o.StitchedR < 0 {
			return invalidArgument("degree bounds must not be negative, got SubR=%d StitchedR=%d", o.SubR, o.StitchedR)
		}
	}

	return nil
}

func (o *BuildOptions) regularity() int {
	if o.Regularity == 0 {
		return o.R
	}

	return o.Regularity
}

// Build runs the construction algorithm named by v.
func (x *Index[T]) Build(ctx context.Context, v Variant, opts BuildOptions) error {
	switch v {
	case VariantVamana:
		return x.Vamana(ctx, opts)
	case VariantFiltered:
		return x.FilteredVamana(ctx, opts)
	case VariantStitched:
		return x.StitchedVamana(ctx, opts)
	default:
		return invalidArgument("unknown variant %d", int(v))
	}
}

// Vamana builds an unfiltered graph in a single pass over a random
// permutation of the nodes. Afterwards every out-degree is at most R.
func (x *Index[T]) Vamana(ctx context.Context, opts BuildOptions) (err error) {
	start := time.Now()
	defer func() { x.finishBuild(ctx, VariantVamana, start, err) }()

	if err := opts.validate(VariantVamana); err != nil {
		return err
	}

	return x.vamana(ctx, opts)
}

func (x *Index[T]) vamana(ctx context.Context, opts BuildOptions) error {
	if err := x.enforceRegular(opts.regularity()); err != nil {
		return err
	}

	var seed uint32

	switch opts.Entry {
	case EntryRandom:
		seed = x.RandomMedoid()
	default:
		m, err := x.Medoid()
		if err != nil {
			return err
		}

		seed = m
	}

	return x.runSteps(ctx, VariantVamana, opts, func(p uint32) error {
		return x.vamanaStep(p, seed, &opts)
	})
}

func (x *Index[T]) vamanaStep(p, seed uint32, opts *BuildOptions) error {
	res, err := x.greedy([]uint32{seed}, x.points.Point(p), 1, opts.L, AnyFilter)
	if err != nil {
		return internalError(err)
	}

	if err := x.robustPrune(p, res.Visited, opts.Alpha, opts.R, false); err != nil {
		return internalError(err)
	}

	nbrs, err := x.graph.Neighbors(p)
	if err != nil {
		return internalError(err)
	}

	for _, j := range nbrs {
		err := x.graph.Mutate(j, func(e *graph.Edges) error {
			offset := 1
			if e.Has(p) {
				offset = 0
			}

			if e.Len()+offset > opts.R {
				return x.pruneLocked(e, []uint32{p}, opts.Alpha, opts.R, false)
			}

			return e.Add(p)
		})
		if err != nil {
			return internalError(err)
		}
	}

	return nil
}

// FilteredVamana builds a label-aware graph. Candidates of each node are
// collected by a traversal restricted to the node's label, starting from the
// label's start node. Afterwards every out-degree is at most R.
func (x *Index[T]) FilteredVamana(ctx context.Context, opts BuildOptions) (err error) {
	start := time.Now()
	defer func() { x.finishBuild(ctx, VariantFiltered, start, err) }()

	if x.attrs == nil {
		return ErrNoFilters
	}

	if err := opts.validate(VariantFiltered); err != nil {
		return err
	}

	if err := x.enforceRegular(opts.regularity()); err != nil {
		return err
	}

	if _, err := x.FilteredFindMedoid(opts.Tau); err != nil {
		return err
	}

	return x.runSteps(ctx, VariantFiltered, opts, func(p uint32) error {
		return x.filteredStep(p, &opts)
	})
}

func (x *Index[T]) filteredStep(p uint32, opts *BuildOptions) error {
	v := x.label(p)

	s, ok := x.attrs.StartNode(v)
	if !ok {
		return internalError(fmt.Errorf("label %g has no start node", v))
	}

	res, err := x.greedy([]uint32{s}, x.points.Point(p), 1, opts.L, MatchFilter(v))
	if err != nil {
		return internalError(err)
	}

	if err := x.robustPrune(p, res.Visited, opts.Alpha, opts.R, true); err != nil {
		return internalError(err)
	}

	nbrs, err := x.graph.Neighbors(p)
	if err != nil {
		return internalError(err)
	}

	for _, j := range nbrs {
		err := x.graph.Mutate(j, func(e *graph.Edges) error {
			if err := e.Add(p); err != nil {
				return err
			}

			if e.Len() > opts.R {
				return x.pruneLocked(e, nil, opts.Alpha, opts.R, true)
			}

			return nil
		})
		if err != nil {
			return internalError(err)
		}
	}

	return nil
}

// StitchedVamana builds an independent graph per label with SubL and SubR,
// replaces the graph's edges by their union, and prunes every node with the
// filter-aware rule down to StitchedR. Labels are built concurrently, up to
// Workers at a time.
func (x *Index[T]) StitchedVamana(ctx context.Context, opts BuildOptions) (err error) {
	start := time.Now()
	defer func() { x.finishBuild(ctx, VariantStitched, start, err) }()

	if x.attrs == nil {
		return ErrNoFilters
	}

	if err := opts.validate(VariantStitched); err != nil {
		return err
	}

	values := x.attrs.Values()
	members := make([][]uint32, len(values))
	subgraphs := make([][][]uint32, len(values))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))

	for i, v := range values {
		members[i] = x.attrs.MemberSlice(v)
		seed := x.int63()

		g.Go(func() error {
			adj, err := x.buildSubgraph(gctx, members[i], seed, opts)
			if err != nil {
				return fmt.Errorf("label %g: %w", v, err)
			}

			subgraphs[i] = adj

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, ids := range members {
		for local, node := range ids {
			err := x.graph.Mutate(node, func(e *graph.Edges) error {
				e.Clear()

				for _, b := range subgraphs[i][local] {
					if err := e.Add(ids[b]); err != nil {
						return err
					}
				}

				return nil
			})
			if err != nil {
				return internalError(err)
			}
		}
	}

	if _, err := x.FilteredFindMedoid(opts.Tau); err != nil {
		return err
	}

	return x.runSteps(ctx, VariantStitched, opts, func(p uint32) error {
		if err := x.robustPrune(p, nil, opts.Alpha, opts.StitchedR, true); err != nil {
			return internalError(err)
		}

		return nil
	})
}

// buildSubgraph runs Vamana over the given nodes and returns the adjacency
// in local ids.
func (x *Index[T]) buildSubgraph(ctx context.Context, ids []uint32, seed int64, opts BuildOptions) ([][]uint32, error) {
	pts := make([][]T, len(ids))
	for i, id := range ids {
		pts[i] = x.points.Point(id)
	}

	sub, err := New(pts,
		WithSeed(seed),
		AllowDuplicates(),
		WithMetricsCollector(x.metricsCollector),
	)
	if err != nil {
		return nil, err
	}

	subOpts := opts
	subOpts.L = opts.SubL
	subOpts.R = opts.SubR
	subOpts.Regularity = 0
	subOpts.Workers = 1
	subOpts.ProgressInterval = 0

	if err := sub.vamana(ctx, subOpts); err != nil {
		return nil, err
	}

	return sub.graph.Adjacency(), nil
}

func (x *Index[T]) enforceRegular(r int) error {
	return translateError(x.withRand(func(rng *rand.Rand) error {
		return x.graph.EnforceRegular(r, rng)
	}))
}

// runSteps applies step to every node of a random permutation, observing
// ctx between steps.
func (x *Index[T]) runSteps(ctx context.Context, v Variant, opts BuildOptions, step func(p uint32) error) error {
	perm := x.permutation()
	total := len(perm)

	var done atomic.Int64

	progress := &rate.Sometimes{Interval: opts.ProgressInterval}
	report := func() {
		n := done.Add(1)
		if opts.ProgressInterval > 0 {
			progress.Do(func() {
				x.logger.LogBuildProgress(ctx, v, int(n), total)
			})
		}
	}

	if opts.Workers <= 1 {
		for _, p := range perm {
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := step(p); err != nil {
				return err
			}

			report()
		}

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for _, p := range perm {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if err := step(p); err != nil {
				return err
			}

			report()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

func (x *Index[T]) finishBuild(ctx context.Context, v Variant, start time.Time, err error) {
	elapsed := time.Since(start)
	x.metricsCollector.RecordBuild(v, x.Len(), elapsed, err)
	x.logger.LogBuild(ctx, v, x.Len(), elapsed, err)
}
