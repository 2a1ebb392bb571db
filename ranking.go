package vamana

import (
	"github.com/tidwall/btree"

	"github.com/hupe1980/vamana/distance"
)

// Ranking orders nodes by their distance to a fixed query, breaking ties by
// node id, so it is a strict total order. Distances are memoized on first
// use. A Ranking is scoped to one query and is not safe for concurrent use.
type Ranking[T distance.Number] struct {
	points *PointStore[T]
	query  []T
	memo   map[uint32]float64
}

func newRanking[T distance.Number](points *PointStore[T], query []T) *Ranking[T] {
	return &Ranking[T]{
		points: points,
		query:  query,
		memo:   make(map[uint32]float64),
	}
}

// Distance returns the squared distance from node id to the query.
func (r *Ranking[T]) Distance(id uint32) float64 {
	if d, ok := r.memo[id]; ok {
		return d
	}

	d := r.points.dist(r.points.Point(id), r.query)
	r.memo[id] = d

	return d
}

// Less reports whether a ranks strictly before b.
func (r *Ranking[T]) Less(a, b uint32) bool {
	da, db := r.Distance(a), r.Distance(b)
	if da != db {
		return da < db
	}

	return a < b
}

// newSet returns an empty node set ordered by r.
func (r *Ranking[T]) newSet() *btree.BTreeG[uint32] {
	return btree.NewBTreeGOptions(r.Less, btree.Options{NoLocks: true})
}
