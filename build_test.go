package vamana

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vamana/distance"
	"github.com/hupe1980/vamana/eval"
	"github.com/hupe1980/vamana/testutil"
)

func assertDegreeBound[T distance.Number](t *testing.T, x *Index[T], r int) {
	t.Helper()

	for i := range x.Len() {
		deg, err := x.Graph().Degree(uint32(i))
		require.NoError(t, err)
		assert.LessOrEqual(t, deg, r, "node %d", i)
	}
}

func TestVamana_DegreeBound(t *testing.T) {
	t.Run("FullyConnected", func(t *testing.T) {
		x, err := New(seqPoints[:5], WithSeed(1), WithEdges([][]uint32{
			{1, 2, 3, 4},
			{0, 2, 3, 4},
			{0, 1, 3, 4},
			{0, 1, 2, 4},
			{0, 1, 2, 3},
		}))
		require.NoError(t, err)

		opts := DefaultBuildOptions()
		opts.Alpha, opts.L, opts.R = 1.1, 3, 2

		require.NoError(t, x.Vamana(context.Background(), opts))
		assertDegreeBound(t, x, 2)
	})

	t.Run("Outlier", func(t *testing.T) {
		x, err := New(
			[][]float32{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5.6}, {10, 11}},
			WithSeed(1),
			WithEdges([][]uint32{
				{1, 2, 3, 4, 5},
				{0, 2, 3, 4, 5},
				{0, 1, 3, 4, 5},
				{0, 1, 2, 4, 5},
				{0, 1, 2, 3, 5},
				{0, 1, 2, 3, 4, 6},
				{5},
			}),
		)
		require.NoError(t, err)

		opts := DefaultBuildOptions()
		opts.Alpha, opts.L, opts.R = 1.1, 2, 2

		require.NoError(t, x.Vamana(context.Background(), opts))
		assertDegreeBound(t, x, 2)
	})

	t.Run("ZeroDegree", func(t *testing.T) {
		x, err := New(seqPoints, WithSeed(1), WithRandomGraph(0.5))
		require.NoError(t, err)

		opts := DefaultBuildOptions()
		opts.R = 0

		require.NoError(t, x.Vamana(context.Background(), opts))
		assert.Zero(t, x.Graph().Stats().Edges)
	})
}

func TestVamana_Singleton(t *testing.T) {
	x, err := New([][]float32{{1, 2, 3}})
	require.NoError(t, err)

	require.NoError(t, x.Vamana(context.Background(), DefaultBuildOptions()))

	res, err := x.Search(context.Background(), []float32{6, 6, 6}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, res.Neighbors)
}

func TestVamana_Recall(t *testing.T) {
	rng := testutil.NewRNG(4711)
	points := rng.UniformVectors(300, 8)
	queries := rng.UniformVectors(20, 8)

	for _, entry := range []Entry{EntryMedoid, EntryRandom} {
		x, err := New(points, WithSeed(rng.Int63()))
		require.NoError(t, err)

		opts := DefaultBuildOptions()
		opts.L, opts.R, opts.Entry = 50, 16, entry

		require.NoError(t, x.Vamana(context.Background(), opts))
		assertDegreeBound(t, x, 16)

		got := make([][]uint32, len(queries))
		truth := make([][]uint32, len(queries))

		for i, q := range queries {
			res, err := x.Search(context.Background(), q, 10, 50)
			require.NoError(t, err)

			got[i] = res.Neighbors
			truth[i] = testutil.ExactTopK(points, q, 10, nil)
		}

		assert.GreaterOrEqual(t, eval.MeanRecall(got, truth, 10), 0.8)
	}
}

func TestVamana_Deterministic(t *testing.T) {
	points := testutil.NewRNG(1).UniformVectors(100, 4)

	build := func() *Index[float32] {
		x, err := New(points, WithSeed(99))
		require.NoError(t, err)

		opts := DefaultBuildOptions()
		opts.L, opts.R = 20, 6

		require.NoError(t, x.Vamana(context.Background(), opts))

		return x
	}

	assert.True(t, build().Graph().Equal(build().Graph()))
}

func TestVamana_Parallel(t *testing.T) {
	points := testutil.NewRNG(2).UniformVectors(200, 6)

	x, err := New(points, WithSeed(5))
	require.NoError(t, err)

	opts := DefaultBuildOptions()
	opts.L, opts.R, opts.Workers = 30, 8, 4

	require.NoError(t, x.Vamana(context.Background(), opts))
	assertDegreeBound(t, x, 8)
}

func TestVamana_Canceled(t *testing.T) {
	x, err := New(testutil.NewRNG(3).UniformVectors(50, 4), WithSeed(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mc := &BasicMetricsCollector{}
	x.metricsCollector = mc

	err = x.Vamana(ctx, DefaultBuildOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), mc.GetStats().BuildErrors)

	opts := DefaultBuildOptions()
	opts.Workers = 4
	assert.ErrorIs(t, x.Vamana(ctx, opts), context.Canceled)
}

func TestBuildOptions_Validate(t *testing.T) {
	x, err := New(seqPoints, WithFilters(seqFilters))
	require.NoError(t, err)

	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(o *BuildOptions)
		v      Variant
	}{
		{"alpha", func(o *BuildOptions) { o.Alpha = 0.5 }, VariantVamana},
		{"L", func(o *BuildOptions) { o.L = 0 }, VariantVamana},
		{"R", func(o *BuildOptions) { o.R = -1 }, VariantVamana},
		{"regularity", func(o *BuildOptions) { o.Regularity = -1 }, VariantVamana},
		{"workers", func(o *BuildOptions) { o.Workers = -1 }, VariantVamana},
		{"tau", func(o *BuildOptions) { o.Tau = 0 }, VariantFiltered},
		{"SubL", func(o *BuildOptions) { o.SubL = 0 }, VariantStitched},
		{"StitchedR", func(o *BuildOptions) { o.StitchedR = -1 }, VariantStitched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultBuildOptions()
			tt.mutate(&opts)

			before := x.Graph().Adjacency()
			assert.ErrorIs(t, x.Build(ctx, tt.v, opts), ErrInvalidArgument)
			assert.Equal(t, before, x.Graph().Adjacency())
		})
	}

	assert.ErrorIs(t, x.Build(ctx, Variant(9), DefaultBuildOptions()), ErrInvalidArgument)
}

func TestVariant(t *testing.T) {
	for _, v := range []Variant{VariantVamana, VariantFiltered, VariantStitched} {
		parsed, err := ParseVariant(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	_, err := ParseVariant("hnsw")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "Unknown(7)", Variant(7).String())
}

func newLabelledIndex(t *testing.T, seed int64) (*Index[float32], [][]float32, []float32) {
	t.Helper()

	rng := testutil.NewRNG(seed)
	points, labels := rng.LabelledClusters(240, 8, 4, 0.3)

	x, err := New(points, WithFilters(labels), WithSeed(rng.Int63()))
	require.NoError(t, err)

	return x, points, labels
}

func assertFilteredSearch(t *testing.T, x *Index[float32], points [][]float32, labels []float32) {
	t.Helper()

	queries := testutil.NewRNG(77).UniformVectors(10, 8)

	var got, truth [][]uint32

	for _, v := range x.Filters().Values() {
		for _, q := range queries {
			res, err := x.Search(context.Background(), q, 5, 40, WithFilter(v))
			require.NoError(t, err)

			for _, id := range res.Neighbors {
				assert.Equal(t, v, labels[id])
			}

			got = append(got, res.Neighbors)
			truth = append(truth, testutil.ExactTopK(points, q, 5, func(id uint32) bool { return labels[id] == v }))
		}
	}

	assert.GreaterOrEqual(t, eval.MeanRecall(got, truth, 5), 0.7)
}

func TestFilteredVamana(t *testing.T) {
	x, points, labels := newLabelledIndex(t, 21)

	opts := DefaultBuildOptions()
	opts.L, opts.R = 40, 12

	require.NoError(t, x.FilteredVamana(context.Background(), opts))
	assertDegreeBound(t, x, 12)
	assertFilteredSearch(t, x, points, labels)

	// An unfiltered query finds the global nearest.
	for _, id := range []uint32{0, 17, 101} {
		res, err := x.Search(context.Background(), points[id], 1, 40)
		require.NoError(t, err)
		assert.Equal(t, []uint32{id}, res.Neighbors)
	}
}

func TestFilteredVamana_Parallel(t *testing.T) {
	x, _, _ := newLabelledIndex(t, 22)

	opts := DefaultBuildOptions()
	opts.L, opts.R, opts.Workers = 30, 8, 3

	require.NoError(t, x.FilteredVamana(context.Background(), opts))
	assertDegreeBound(t, x, 8)
}

func TestStitchedVamana(t *testing.T) {
	x, points, labels := newLabelledIndex(t, 23)

	opts := DefaultBuildOptions()
	opts.SubL, opts.SubR, opts.StitchedR, opts.Workers = 30, 10, 12, 2

	require.NoError(t, x.StitchedVamana(context.Background(), opts))
	assertDegreeBound(t, x, 12)
	assertFilteredSearch(t, x, points, labels)

	// Every edge stays within its label.
	for i, nbrs := range x.Graph().Adjacency() {
		for _, b := range nbrs {
			assert.Equal(t, labels[i], labels[b])
		}
	}
}

func TestFilteredBuilds_Unlabelled(t *testing.T) {
	x, err := New(seqPoints)
	require.NoError(t, err)

	ctx := context.Background()

	assert.ErrorIs(t, x.FilteredVamana(ctx, DefaultBuildOptions()), ErrNoFilters)
	assert.ErrorIs(t, x.StitchedVamana(ctx, DefaultBuildOptions()), ErrNoFilters)
}

func TestBuild_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}

	x, err := New(seqPoints, WithFilters(seqFilters), WithSeed(1), WithMetricsCollector(mc))
	require.NoError(t, err)

	for _, v := range []Variant{VariantVamana, VariantFiltered, VariantStitched} {
		require.NoError(t, x.Build(context.Background(), v, DefaultBuildOptions()))
	}

	stats := mc.GetStats()
	assert.Equal(t, int64(3), stats.BuildCount)
	assert.Zero(t, stats.BuildErrors)
	assert.Positive(t, stats.PruneCount)
}
