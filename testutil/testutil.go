package testutil

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/vamana/distance"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63 returns a non-negative pseudo-random int64, e.g. to seed an index.
func (r *RNG) Int63() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63()
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors.
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float32, num)
	for i := range num {
		vectors[i] = r.unitLocked(dimensions)
	}

	return vectors
}

func (r *RNG) unitLocked(dimensions int) []float32 {
	vec := make([]float32, dimensions)

	var norm float64
	for j := range vec {
		v := r.rand.NormFloat64()
		vec[j] = float32(v)
		norm += v * v
	}

	if norm == 0 {
		norm = 1
	}

	inv := float32(1.0 / math.Sqrt(norm))
	for j := range vec {
		vec[j] *= inv
	}

	return vec
}

// ClusteredVectors generates vectors clustered around random centroids.
// Vector i belongs to cluster i % clusters.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) [][]float32 {
	centroids := r.UnitVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)

	for i := range num {
		centroid := centroids[i%clusters]
		vec := data[i*dim : (i+1)*dim]

		for j := range dim {
			vec[j] = centroid[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
	}

	return vectors
}

// LabelledClusters generates one cluster per label, labelled 1..labels.
// Points with the same label are close in vector space.
func (r *RNG) LabelledClusters(num, dim, labels int, spread float32) ([][]float32, []float32) {
	vectors := r.ClusteredVectors(num, dim, labels, spread)

	values := make([]float32, num)
	for i := range values {
		values[i] = float32(i%labels + 1)
	}

	return vectors, values
}

// Labels assigns one of count labels, 1..count, uniformly to n points.
func (r *RNG) Labels(n, count int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	labels := make([]float32, n)
	for i := range labels {
		labels[i] = float32(r.rand.Intn(count) + 1)
	}

	return labels
}

// ZipfLabels assigns labels 1..count with a Zipfian skew: P(k) ∝ 1/k^s.
// s=1.5 puts most points on few labels.
func (r *RNG) ZipfLabels(n, count int, s float64) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	weights := make([]float64, count)

	var total float64
	for k := range count {
		total += 1.0 / math.Pow(float64(k+1), s)
		weights[k] = total
	}

	labels := make([]float32, n)
	for i := range labels {
		u := r.rand.Float64() * total
		k, _ := slices.BinarySearch(weights, u)
		labels[i] = float32(min(k, count-1) + 1)
	}

	return labels
}

// ExactTopK returns the k points closest to query by brute force, closest
// first with ties broken by id. If keep is non-nil only ids it accepts are
// considered.
func ExactTopK(points [][]float32, query []float32, k int, keep func(id uint32) bool) []uint32 {
	type scored struct {
		id   uint32
		dist float64
	}

	all := make([]scored, 0, len(points))
	for i, p := range points {
		if keep != nil && !keep(uint32(i)) {
			continue
		}

		all = append(all, scored{id: uint32(i), dist: distance.SquaredL2(p, query)})
	}

	slices.SortFunc(all, func(a, b scored) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}

		return cmp.Compare(a.id, b.id)
	})

	ids := make([]uint32, 0, min(k, len(all)))
	for _, s := range all[:min(k, len(all))] {
		ids = append(ids, s.id)
	}

	return ids
}
