package vamana

import (
	"math"

	"github.com/hupe1980/vamana/graph"
)

// RobustPrune rewrites the out-edges of p to at most r diverse neighbors
// chosen from candidates and p's current out-neighbors.
//
// Candidates are taken closest to p first. Each chosen neighbor c removes
// every remaining candidate e with alpha·d(c, e) <= d(e, p), so alpha = 1
// prunes most aggressively and larger values keep more long edges.
func (x *Index[T]) RobustPrune(p uint32, candidates []uint32, alpha float64, r int) error {
	return x.robustPrune(p, candidates, alpha, r, false)
}

// FilteredRobustPrune is RobustPrune with the filter-aware removal rule: a
// chosen neighbor c only removes a candidate e when e's label differs from
// p's, or when e, p and c all share one label.
func (x *Index[T]) FilteredRobustPrune(p uint32, candidates []uint32, alpha float64, r int) error {
	if x.attrs == nil {
		return ErrNoFilters
	}

	return x.robustPrune(p, candidates, alpha, r, true)
}

func (x *Index[T]) robustPrune(p uint32, candidates []uint32, alpha float64, r int, filtered bool) error {
	if err := x.checkNode(p); err != nil {
		return err
	}

	for _, c := range candidates {
		if err := x.checkNode(c); err != nil {
			return err
		}
	}

	if err := checkPruneParams(alpha, r); err != nil {
		return err
	}

	return translateError(x.graph.Mutate(p, func(e *graph.Edges) error {
		return x.pruneLocked(e, candidates, alpha, r, filtered)
	}))
}

func checkPruneParams(alpha float64, r int) error {
	if math.IsNaN(alpha) || alpha < 1 {
		return invalidArgument("alpha must be >= 1, got %g", alpha)
	}

	if r < 0 {
		return invalidArgument("degree bound must not be negative, got %d", r)
	}

	return nil
}

// pruneLocked runs the prune on the list e while its lock is held.
// Arguments are already validated.
func (x *Index[T]) pruneLocked(e *graph.Edges, candidates []uint32, alpha float64, r int, filtered bool) error {
	p := e.Node()
	rank := newRanking(x.points, x.points.Point(p))
	pool := rank.newSet()

	for _, c := range candidates {
		if c != p {
			pool.Set(c)
		}
	}

	for _, c := range e.Items() {
		pool.Set(c)
	}

	e.Clear()

	total := pool.Len()

	for pool.Len() > 0 && e.Len() < r {
		c, _ := pool.PopMin()
		if err := e.Add(c); err != nil {
			return internalError(err)
		}

		for _, cand := range pool.Items() {
			if filtered && !x.filterApplies(p, c, cand) {
				continue
			}

			if alpha*x.points.Distance(c, cand) <= rank.Distance(cand) {
				pool.Delete(cand)
			}
		}
	}

	kept := e.Len()
	x.metricsCollector.RecordPrune(kept, total-kept-pool.Len())

	return nil
}

// filterApplies reports whether chosen neighbor c may remove candidate e
// from the pool of pivot p.
func (x *Index[T]) filterApplies(p, c, e uint32) bool {
	le, lp := x.label(e), x.label(p)
	if le != lp {
		return true
	}

	return le == x.label(c)
}
