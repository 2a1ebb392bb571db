package vamana

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	l.LogBuild(ctx, VariantFiltered, 10, time.Second, nil)
	assert.Contains(t, buf.String(), "build completed")
	assert.Contains(t, buf.String(), "variant=filtered")

	buf.Reset()
	l.LogBuild(ctx, VariantVamana, 10, time.Second, errors.New("boom"))
	assert.Contains(t, buf.String(), "build failed")
	assert.Contains(t, buf.String(), "error=boom")

	buf.Reset()
	l.WithK(5).LogSearch(ctx, 5, 3, 12, nil)
	assert.Contains(t, buf.String(), "search completed")
	assert.Contains(t, buf.String(), "visited=12")

	buf.Reset()
	l.WithVariant(VariantStitched).WithCount(3).LogBuildProgress(ctx, VariantStitched, 1, 3)
	assert.Contains(t, buf.String(), "build progress")
	assert.Contains(t, buf.String(), "count=3")

	buf.Reset()
	l.LogSave(ctx, "a.graph", nil)
	l.LogLoad(ctx, "a.graph", 4, nil)
	assert.Contains(t, buf.String(), "graph saved")
	assert.Contains(t, buf.String(), "nodes=4")
}

func TestWithLogger_Build(t *testing.T) {
	var buf bytes.Buffer

	l := NewLogger(slog.NewJSONHandler(&buf, nil))

	x, err := New(seqPoints, WithLogger(l), WithSeed(1))
	require.NoError(t, err)

	require.NoError(t, x.Vamana(context.Background(), DefaultBuildOptions()))
	assert.Contains(t, buf.String(), `"msg":"build completed"`)
	assert.Contains(t, buf.String(), `"nodes":6`)
}

func TestWithLogger_Nil(t *testing.T) {
	x, err := New(seqPoints, WithLogger(nil), WithMetricsCollector(nil))
	require.NoError(t, err)

	assert.NotNil(t, x.logger)
	assert.Equal(t, NoopMetricsCollector{}, x.metricsCollector)
}
