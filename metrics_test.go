package vamana

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}

	mc.RecordBuild(VariantVamana, 10, time.Millisecond, nil)
	mc.RecordBuild(VariantFiltered, 10, time.Millisecond, errors.New("x"))
	mc.RecordSearch(10, 20, 2*time.Microsecond, nil)
	mc.RecordSearch(10, 40, 4*time.Microsecond, nil)
	mc.RecordPrune(3, 5)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.BuildCount)
	assert.Equal(t, int64(1), stats.BuildErrors)
	assert.Equal(t, int64(2), stats.SearchCount)
	assert.Equal(t, int64(30), stats.SearchAvgVisited)
	assert.Equal(t, int64(3000), stats.SearchAvgNanos)
	assert.Equal(t, int64(1), stats.PruneCount)
	assert.Equal(t, int64(3), stats.PruneKept)
	assert.Equal(t, int64(5), stats.PruneDropped)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	mc := &BasicMetricsCollector{}
	assert.Zero(t, mc.GetStats().SearchAvgNanos)
}
