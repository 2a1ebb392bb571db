package graph

import (
	"math/rand"
	"slices"
	"sync"
)

// Graph is a directed graph over n dense node identifiers.
//
// Out-neighbor lists are kept sorted ascending, so iteration order and
// encoded output are deterministic.
type Graph struct {
	adj   [][]uint32
	locks []sync.RWMutex
}

// New returns a graph with n nodes and no edges.
func New(n int) *Graph {
	if n < 0 {
		n = 0
	}

	return &Graph{
		adj:   make([][]uint32, n),
		locks: make([]sync.RWMutex, n),
	}
}

// NewRandom returns a graph with n nodes in which every ordered pair (i, j),
// i != j, is an edge independently with probability p.
func NewRandom(n int, p float64, rng *rand.Rand) (*Graph, error) {
	if p < 0 || p > 1 {
		return nil, ErrInvalidProbability
	}

	g := New(n)

	for i := range g.adj {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}

			if rng.Float64() < p {
				g.adj[i] = append(g.adj[i], uint32(j))
			}
		}
	}

	return g, nil
}

// FromAdjacency builds a graph from explicit out-neighbor lists. Duplicate
// entries collapse into one edge.
func FromAdjacency(lists [][]uint32) (*Graph, error) {
	g := New(len(lists))

	for i, list := range lists {
		for _, b := range list {
			if err := g.check(b); err != nil {
				return nil, err
			}

			if b == uint32(i) {
				return nil, ErrSelfLoop
			}

			g.adj[i] = insertSorted(g.adj[i], b)
		}
	}

	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.adj)
}

func (g *Graph) check(a uint32) error {
	if int(a) >= len(g.adj) {
		return &NodeOutOfRangeError{Node: a, Count: len(g.adj)}
	}

	return nil
}

// AddEdge inserts a → b. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(a, b uint32) error {
	return g.Mutate(a, func(e *Edges) error {
		return e.Add(b)
	})
}

// RemoveEdge deletes a → b. Removing a missing edge is a no-op.
func (g *Graph) RemoveEdge(a, b uint32) error {
	return g.Mutate(a, func(e *Edges) error {
		if err := g.check(b); err != nil {
			return err
		}

		e.Remove(b)

		return nil
	})
}

// RemoveAllEdges clears the out-neighbor list of a.
func (g *Graph) RemoveAllEdges(a uint32) error {
	return g.Mutate(a, func(e *Edges) error {
		e.Clear()
		return nil
	})
}

// Neighbors returns a copy of the out-neighbors of a, ascending.
func (g *Graph) Neighbors(a uint32) ([]uint32, error) {
	if err := g.check(a); err != nil {
		return nil, err
	}

	g.locks[a].RLock()
	out := slices.Clone(g.adj[a])
	g.locks[a].RUnlock()

	if out == nil {
		out = []uint32{}
	}

	return out, nil
}

// Degree returns the out-degree of a.
func (g *Graph) Degree(a uint32) (int, error) {
	if err := g.check(a); err != nil {
		return 0, err
	}

	g.locks[a].RLock()
	d := len(g.adj[a])
	g.locks[a].RUnlock()

	return d, nil
}

// IsNeighbor reports whether the edge a → b exists.
func (g *Graph) IsNeighbor(a, b uint32) (bool, error) {
	if err := g.check(a); err != nil {
		return false, err
	}

	if err := g.check(b); err != nil {
		return false, err
	}

	g.locks[a].RLock()
	_, ok := slices.BinarySearch(g.adj[a], b)
	g.locks[a].RUnlock()

	return ok, nil
}

// Mutate runs fn with exclusive access to a's out-neighbor list. The edits
// fn makes before returning an error are kept.
func (g *Graph) Mutate(a uint32, fn func(e *Edges) error) error {
	if err := g.check(a); err != nil {
		return err
	}

	g.locks[a].Lock()
	defer g.locks[a].Unlock()

	return fn(&Edges{g: g, node: a})
}

// EnforceRegular brings every node's out-degree to r. Nodes above r keep a
// uniformly random subset of r edges. Nodes below r gain edges to uniformly
// random other nodes, but only when n > r; smaller graphs are left as they
// are since no node could reach degree r without self-loops.
func (g *Graph) EnforceRegular(r int, rng *rand.Rand) error {
	if r < 0 {
		return ErrNegativeDegree
	}

	n := len(g.adj)

	for a := range g.adj {
		err := g.Mutate(uint32(a), func(e *Edges) error {
			if e.Len() > r {
				keep := e.Items()
				rng.Shuffle(len(keep), func(i, j int) { keep[i], keep[j] = keep[j], keep[i] })
				keep = keep[:r]
				slices.Sort(keep)
				e.g.adj[e.node] = keep

				return nil
			}

			if n <= r {
				return nil
			}

			for e.Len() < r {
				b := uint32(rng.Intn(n))
				if b == e.node {
					continue
				}

				e.insert(b)
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Adjacency returns a deep copy of every node's out-neighbor list.
func (g *Graph) Adjacency() [][]uint32 {
	out := make([][]uint32, len(g.adj))

	for a := range g.adj {
		g.locks[a].RLock()
		out[a] = slices.Clone(g.adj[a])
		g.locks[a].RUnlock()

		if out[a] == nil {
			out[a] = []uint32{}
		}
	}

	return out
}

// Equal reports whether g and o have the same nodes and edges.
func (g *Graph) Equal(o *Graph) bool {
	if g.Len() != o.Len() {
		return false
	}

	a, b := g.Adjacency(), o.Adjacency()
	for i := range a {
		if !slices.Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

// Edges is the out-neighbor list of one node while its write lock is held.
// It is only valid inside the Mutate callback that produced it.
type Edges struct {
	g    *Graph
	node uint32
}

// Node returns the node whose list is being edited.
func (e *Edges) Node() uint32 { return e.node }

// Len returns the current out-degree.
func (e *Edges) Len() int { return len(e.g.adj[e.node]) }

// Has reports whether b is an out-neighbor.
func (e *Edges) Has(b uint32) bool {
	_, ok := slices.BinarySearch(e.g.adj[e.node], b)
	return ok
}

// Items returns a copy of the out-neighbors, ascending.
func (e *Edges) Items() []uint32 {
	return slices.Clone(e.g.adj[e.node])
}

// Add inserts an edge to b.
func (e *Edges) Add(b uint32) error {
	if err := e.g.check(b); err != nil {
		return err
	}

	if b == e.node {
		return ErrSelfLoop
	}

	e.insert(b)

	return nil
}

// Remove deletes the edge to b and reports whether it existed.
func (e *Edges) Remove(b uint32) bool {
	list := e.g.adj[e.node]

	i, ok := slices.BinarySearch(list, b)
	if !ok {
		return false
	}

	e.g.adj[e.node] = slices.Delete(list, i, i+1)

	return true
}

// Clear removes every out-edge.
func (e *Edges) Clear() {
	e.g.adj[e.node] = e.g.adj[e.node][:0]
}

func (e *Edges) insert(b uint32) {
	e.g.adj[e.node] = insertSorted(e.g.adj[e.node], b)
}

func insertSorted(list []uint32, b uint32) []uint32 {
	i, ok := slices.BinarySearch(list, b)
	if ok {
		return list
	}

	return slices.Insert(list, i, b)
}
