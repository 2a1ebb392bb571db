// Package eval measures search quality against exact ground truth.
package eval

import (
	"cmp"
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vamana/distance"
)

// Recall returns |got[:k] ∩ truth[:k]| / min(k, len(truth)). An empty truth
// list is matched perfectly by an empty result.
func Recall(got, truth []uint32, k int) float64 {
	truth = truth[:min(k, len(truth))]
	got = got[:min(k, len(got))]

	if len(truth) == 0 {
		if len(got) == 0 {
			return 1
		}

		return 0
	}

	want := make(map[uint32]struct{}, len(truth))
	for _, id := range truth {
		want[id] = struct{}{}
	}

	hits := 0
	for _, id := range got {
		if _, ok := want[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(truth))
}

// MeanRecall averages Recall over paired result and truth lists. Extra lists
// on either side are ignored.
func MeanRecall(got, truth [][]uint32, k int) float64 {
	n := min(len(got), len(truth))
	if n == 0 {
		return 0
	}

	var sum float64
	for i := range n {
		sum += Recall(got[i], truth[i], k)
	}

	return sum / float64(n)
}

// Query is one ground-truth request. A nil Label makes the query unfiltered.
type Query[T distance.Number] struct {
	Point []T
	Label *float32
}

// GroundTruth computes the exact k nearest neighbors of every query by brute
// force, closest first with ties broken by id. labels may be nil when no
// query is filtered.
func GroundTruth[T distance.Number](ctx context.Context, points [][]T, labels []float32, queries []Query[T], k int) ([][]uint32, error) {
	out := make([][]uint32, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out[i] = exact(points, labels, q, k)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

type scored struct {
	id   uint32
	dist float64
}

func exact[T distance.Number](points [][]T, labels []float32, q Query[T], k int) []uint32 {
	all := make([]scored, 0, len(points))

	for i, p := range points {
		if q.Label != nil && (labels == nil || labels[i] != *q.Label) {
			continue
		}

		all = append(all, scored{id: uint32(i), dist: distance.SquaredL2(p, q.Point)})
	}

	slices.SortFunc(all, func(a, b scored) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}

		return cmp.Compare(a.id, b.id)
	})

	ids := make([]uint32, min(k, len(all)))
	for i := range ids {
		ids[i] = all[i].id
	}

	return ids
}
