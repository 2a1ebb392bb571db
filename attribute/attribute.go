// Package attribute maps filter labels to the nodes that carry them.
//
// Every node has exactly one float32 label, so labels partition the node set.
// Membership is stored as one roaring bitmap per label. Each label can also
// hold a small sample of seed nodes, the first of which is the label's start
// node for filtered traversal.
package attribute

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrInvalidLabel is returned for NaN labels, which cannot be compared.
var ErrInvalidLabel = errors.New("attribute: invalid label")

// Index is the label table of an index. Labels are fixed at construction;
// seeds are set later and guarded by a mutex.
type Index struct {
	labels  []float32
	members map[float32]*roaring.Bitmap
	values  []float32

	mu    sync.RWMutex
	seeds map[float32][]uint32
}

// New builds an Index where node i carries labels[i].
func New(labels []float32) (*Index, error) {
	x := &Index{
		labels:  labels,
		members: make(map[float32]*roaring.Bitmap),
		seeds:   make(map[float32][]uint32),
	}

	for i, v := range labels {
		if math.IsNaN(float64(v)) {
			return nil, fmt.Errorf("%w: NaN at node %d", ErrInvalidLabel, i)
		}

		bm, ok := x.members[v]
		if !ok {
			bm = roaring.New()
			x.members[v] = bm
			x.values = append(x.values, v)
		}

		bm.Add(uint32(i))
	}

	slices.Sort(x.values)

	for _, bm := range x.members {
		bm.RunOptimize()
	}

	return x, nil
}

// Len returns the number of labelled nodes.
func (x *Index) Len() int {
	return len(x.labels)
}

// Label returns the label of node id.
func (x *Index) Label(id uint32) (float32, bool) {
	if int(id) >= len(x.labels) {
		return 0, false
	}

	return x.labels[id], true
}

// Labels returns the per-node label slice. Callers must not modify it.
func (x *Index) Labels() []float32 {
	return x.labels
}

// Values returns the distinct labels in ascending order.
func (x *Index) Values() []float32 {
	return slices.Clone(x.values)
}

// Has reports whether any node carries v.
func (x *Index) Has(v float32) bool {
	_, ok := x.members[v]
	return ok
}

// Count returns the number of nodes carrying v.
func (x *Index) Count(v float32) int {
	bm, ok := x.members[v]
	if !ok {
		return 0
	}

	return int(bm.GetCardinality())
}

// Contains reports whether node id carries v.
func (x *Index) Contains(v float32, id uint32) bool {
	bm, ok := x.members[v]
	return ok && bm.Contains(id)
}

// Members returns the nodes carrying v in ascending order. An unknown label
// yields nothing.
func (x *Index) Members(v float32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		bm, ok := x.members[v]
		if !ok {
			return
		}

		it := bm.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// MemberSlice returns the nodes carrying v in ascending order.
func (x *Index) MemberSlice(v float32) []uint32 {
	bm, ok := x.members[v]
	if !ok {
		return nil
	}

	return bm.ToArray()
}

// Sample draws up to tau distinct members of v uniformly at random.
func (x *Index) Sample(v float32, tau int, rng *rand.Rand) []uint32 {
	pool := x.MemberSlice(v)
	if tau > len(pool) {
		tau = len(pool)
	}

	for i := 0; i < tau; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:tau:tau]
}

// SetSeeds stores the sampled seed nodes of v. The first seed becomes the
// label's start node.
func (x *Index) SetSeeds(v float32, seeds []uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(seeds) == 0 {
		delete(x.seeds, v)
		return
	}

	x.seeds[v] = slices.Clone(seeds)
}

// Seeds returns the seed nodes of v.
func (x *Index) Seeds(v float32) []uint32 {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return slices.Clone(x.seeds[v])
}

// StartNode returns the start node of v. The second result is false when v
// is unknown or has no seeds yet.
func (x *Index) StartNode(v float32) (uint32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	s, ok := x.seeds[v]
	if !ok {
		return 0, false
	}

	return s[0], true
}

// StartNodes returns the start node of every seeded label, in label order.
func (x *Index) StartNodes() []uint32 {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]uint32, 0, len(x.seeds))

	for _, v := range x.values {
		if s, ok := x.seeds[v]; ok {
			out = append(out, s[0])
		}
	}

	return out
}

// Seeded reports whether every label has a start node.
func (x *Index) Seeded() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return len(x.values) > 0 && len(x.seeds) == len(x.values)
}
