package vamana

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultTau is the number of seed nodes sampled per label when seeds are
// computed implicitly.
const DefaultTau = 1

// Medoid returns the node minimizing the total squared distance to all
// other nodes. Ties go to the lowest id. The result is computed exactly in
// O(n²) on first use and cached.
func (x *Index[T]) Medoid() (uint32, error) {
	x.medoidMu.Lock()
	defer x.medoidMu.Unlock()

	if x.hasMedoid {
		return x.medoid, nil
	}

	n := x.points.Len()
	sums := make([]float64, n)

	workers := min(runtime.GOMAXPROCS(0), n)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group

	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)

		g.Go(func() error {
			for i := lo; i < hi; i++ {
				var sum float64
				for j := 0; j < n; j++ {
					sum += x.points.Distance(uint32(i), uint32(j))
				}

				sums[i] = sum
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	best := 0
	for i := 1; i < n; i++ {
		if sums[i] < sums[best] {
			best = i
		}
	}

	x.medoid = uint32(best)
	x.hasMedoid = true

	return x.medoid, nil
}

// RandomMedoid returns a uniformly random node. It is an O(1) stand-in for
// Medoid on large datasets and is not cached.
func (x *Index[T]) RandomMedoid() uint32 {
	return uint32(x.intn(x.points.Len()))
}

// FilteredFindMedoid samples up to tau seed nodes per label, in ascending
// label order, and makes the first sample of each label its start node.
// It returns the start node per label.
func (x *Index[T]) FilteredFindMedoid(tau int) (map[float32]uint32, error) {
	if x.attrs == nil {
		return nil, ErrNoFilters
	}

	if tau < 1 {
		return nil, invalidArgument("tau must be positive, got %d", tau)
	}

	x.medoidMu.Lock()
	defer x.medoidMu.Unlock()

	return x.findSeeds(tau), nil
}

func (x *Index[T]) findSeeds(tau int) map[float32]uint32 {
	starts := make(map[float32]uint32)

	for _, v := range x.attrs.Values() {
		x.rngMu.Lock()
		seeds := x.attrs.Sample(v, tau, x.rng)
		x.rngMu.Unlock()

		x.attrs.SetSeeds(v, seeds)
		starts[v] = seeds[0]
	}

	return starts
}

// ensureSeeds computes start nodes with DefaultTau unless every label has
// one already.
func (x *Index[T]) ensureSeeds() error {
	if x.attrs == nil {
		return ErrNoFilters
	}

	x.medoidMu.Lock()
	defer x.medoidMu.Unlock()

	if !x.attrs.Seeded() {
		x.findSeeds(DefaultTau)
	}

	return nil
}
