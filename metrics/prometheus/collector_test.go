package prometheus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vamana"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBuild(vamana.VariantFiltered, 10, time.Second, nil)
	c.RecordBuild(vamana.VariantFiltered, 10, time.Second, errors.New("x"))
	c.RecordSearch(10, 33, time.Millisecond, nil)
	c.RecordPrune(4, 6)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("filtered", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("filtered", "error")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.buildNodes.WithLabelValues("filtered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("ok")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.pruneDropped))

	n, err := testutil.GatherAndCount(reg, "vamana_search_visited_nodes", "vamana_prune_kept_edges")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_WithIndex(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	idx, err := vamana.New([][]float32{{0}, {1}, {2}, {3}}, vamana.WithSeed(1), vamana.WithMetricsCollector(c))
	require.NoError(t, err)

	require.NoError(t, idx.Vamana(context.Background(), vamana.DefaultBuildOptions()))

	_, err = idx.Search(context.Background(), []float32{1.2}, 1, 4)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("vamana", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("ok")))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) })
}
