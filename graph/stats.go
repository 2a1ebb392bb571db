package graph

import (
	"github.com/bits-and-blooms/bitset"
)

// Stats summarizes the degree distribution of a graph.
type Stats struct {
	Nodes      int
	Edges      int
	MinDegree  int
	MaxDegree  int
	MeanDegree float64
	// Isolated counts nodes without out-edges.
	Isolated int
}

// Stats computes degree statistics. Concurrent mutation may yield a mix of
// before and after states per node.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.adj)}
	if s.Nodes == 0 {
		return s
	}

	s.MinDegree = int(^uint(0) >> 1)

	for a := range g.adj {
		g.locks[a].RLock()
		d := len(g.adj[a])
		g.locks[a].RUnlock()

		s.Edges += d
		s.MinDegree = min(s.MinDegree, d)
		s.MaxDegree = max(s.MaxDegree, d)

		if d == 0 {
			s.Isolated++
		}
	}

	s.MeanDegree = float64(s.Edges) / float64(s.Nodes)

	return s
}

// Reachable returns the number of nodes reachable from any of starts by
// following out-edges, starts included.
func (g *Graph) Reachable(starts ...uint32) (int, error) {
	seen := bitset.New(uint(len(g.adj)))
	queue := make([]uint32, 0, len(starts))

	for _, s := range starts {
		if err := g.check(s); err != nil {
			return 0, err
		}

		if !seen.Test(uint(s)) {
			seen.Set(uint(s))
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]

		g.locks[a].RLock()
		for _, b := range g.adj[a] {
			if !seen.Test(uint(b)) {
				seen.Set(uint(b))
				queue = append(queue, b)
			}
		}
		g.locks[a].RUnlock()
	}

	return int(seen.Count()), nil
}
