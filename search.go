package vamana

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/vamana/internal/visited"
)

// Filter restricts a traversal to nodes carrying one label.
type Filter struct {
	value float32
	set   bool
}

// AnyFilter admits every node.
var AnyFilter = Filter{}

// MatchFilter admits only nodes labelled v.
func MatchFilter(v float32) Filter {
	return Filter{value: v, set: true}
}

// Value returns the label and whether the filter is restrictive.
func (f Filter) Value() (float32, bool) {
	return f.value, f.set
}

func (f Filter) String() string {
	if !f.set {
		return "any"
	}

	return fmt.Sprintf("label=%g", f.value)
}

// SearchResult is the outcome of a greedy traversal.
type SearchResult struct {
	// Neighbors holds up to k nodes, closest first.
	Neighbors []uint32
	// Visited holds every expanded node, closest first.
	Visited []uint32
}

// GreedySearch runs a best-first traversal from starts toward query, keeping
// at most L candidates, and returns the k closest candidates together with
// the visited set.
//
// A restrictive filter only admits neighbors carrying its label; the start
// nodes are admitted regardless. On a labelled index, an unfiltered search
// without starts first runs a filtered pass (k = 1) from every label's start
// node and traverses from the resulting entry points.
func (x *Index[T]) GreedySearch(starts []uint32, query []T, k, l int, filter Filter) (*SearchResult, error) {
	if err := x.checkQuery(query); err != nil {
		return nil, err
	}

	if k < 0 || l < k {
		return nil, fmt.Errorf("%w: k=%d, L=%d", ErrInvalidK, k, l)
	}

	if filter.set && x.attrs == nil {
		return nil, ErrNoFilters
	}

	for _, s := range starts {
		if err := x.checkNode(s); err != nil {
			return nil, err
		}
	}

	if len(starts) == 0 && !filter.set && x.attrs != nil {
		entries, err := x.entryPoints(query, l)
		if err != nil {
			return nil, err
		}

		starts = entries
	}

	if len(starts) == 0 {
		return nil, ErrNoStartNodes
	}

	if k == 0 {
		return &SearchResult{Neighbors: []uint32{}, Visited: []uint32{}}, nil
	}

	return x.greedy(starts, query, k, l, filter)
}

// entryPoints finds, for every label, the node nearest to query reachable
// from the label's start node.
func (x *Index[T]) entryPoints(query []T, l int) ([]uint32, error) {
	if err := x.ensureSeeds(); err != nil {
		return nil, err
	}

	var entries []uint32

	for _, v := range x.attrs.Values() {
		s, ok := x.attrs.StartNode(v)
		if !ok {
			continue
		}

		res, err := x.greedy([]uint32{s}, query, 1, l, MatchFilter(v))
		if err != nil {
			return nil, err
		}

		entries = append(entries, res.Neighbors...)
	}

	return entries, nil
}

// greedy is the traversal core. Arguments are already validated and k >= 1.
func (x *Index[T]) greedy(starts []uint32, query []T, k, l int, filter Filter) (*SearchResult, error) {
	rank := newRanking(x.points, query)
	candidates := rank.newSet()
	frontier := rank.newSet()
	expanded := rank.newSet()

	seen := visited.Get(x.points.Len())
	defer visited.Put(seen)

	for _, s := range starts {
		candidates.Set(s)
		frontier.Set(s)
	}

	truncate := func() {
		for candidates.Len() > l {
			c, _ := candidates.PopMax()
			frontier.Delete(c)
		}
	}

	truncate()

	for frontier.Len() > 0 {
		p, _ := frontier.PopMin()
		seen.Visit(p)
		expanded.Set(p)

		nbrs, err := x.graph.Neighbors(p)
		if err != nil {
			return nil, translateError(err)
		}

		for _, b := range nbrs {
			if seen.Visited(b) {
				continue
			}

			if filter.set && !x.attrs.Contains(filter.value, b) {
				continue
			}

			if _, ok := candidates.Set(b); !ok {
				frontier.Set(b)
			}
		}

		truncate()
	}

	res := &SearchResult{
		Neighbors: candidates.Items(),
		Visited:   expanded.Items(),
	}

	if len(res.Neighbors) > k {
		res.Neighbors = res.Neighbors[:k]
	}

	return res, nil
}

type searchOptions struct {
	filter Filter
	starts []uint32
}

// SearchOption configures Search.
type SearchOption func(*searchOptions)

// WithFilter restricts the search to nodes labelled v.
func WithFilter(v float32) SearchOption {
	return func(o *searchOptions) {
		o.filter = MatchFilter(v)
	}
}

// WithStartNodes overrides the start nodes Search would choose.
func WithStartNodes(ids ...uint32) SearchOption {
	return func(o *searchOptions) {
		o.starts = ids
	}
}

// Search returns the k approximate nearest neighbors of query using a search
// budget of L.
//
// Without a filter an unlabelled index starts from its medoid and a labelled
// index from the entry points of every label. With a filter the search starts
// from the label's start node; a label no node carries yields an empty
// result.
func (x *Index[T]) Search(ctx context.Context, query []T, k, l int, optFns ...SearchOption) (res *SearchResult, err error) {
	var opts searchOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	start := time.Now()

	defer func() {
		visitedCount := 0
		if res != nil {
			visitedCount = len(res.Visited)
		}

		x.metricsCollector.RecordSearch(k, visitedCount, time.Since(start), err)
		x.logger.LogSearch(ctx, k, len(res.GetNeighbors()), visitedCount, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	starts := opts.starts

	if len(starts) == 0 {
		starts, err = x.searchStarts(opts.filter)
		if err != nil {
			return nil, err
		}

		if starts == nil && opts.filter.set {
			if err := x.checkQuery(query); err != nil {
				return nil, err
			}

			if k < 0 || l < k {
				return nil, fmt.Errorf("%w: k=%d, L=%d", ErrInvalidK, k, l)
			}

			return &SearchResult{Neighbors: []uint32{}, Visited: []uint32{}}, nil
		}
	}

	return x.GreedySearch(starts, query, k, l, opts.filter)
}

// searchStarts picks the start nodes for Search. A nil result for a
// restrictive filter means no node carries the label.
func (x *Index[T]) searchStarts(f Filter) ([]uint32, error) {
	if f.set {
		if x.attrs == nil {
			return nil, ErrNoFilters
		}

		if !x.attrs.Has(f.value) {
			return nil, nil
		}

		if err := x.ensureSeeds(); err != nil {
			return nil, err
		}

		s, _ := x.attrs.StartNode(f.value)

		return []uint32{s}, nil
	}

	if x.attrs != nil {
		// GreedySearch derives entry points per label.
		return nil, nil
	}

	m, err := x.Medoid()
	if err != nil {
		return nil, err
	}

	return []uint32{m}, nil
}

// GetNeighbors returns the neighbors of r, tolerating a nil result.
func (r *SearchResult) GetNeighbors() []uint32 {
	if r == nil {
		return nil
	}

	return r.Neighbors
}
