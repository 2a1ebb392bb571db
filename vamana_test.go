package vamana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqPoints are six 3-d points on a line: {1,2,3}, {4,5,6}, ... {16,17,18}.
var seqPoints = [][]int32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}, {13, 14, 15}, {16, 17, 18}}

func TestNew(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, err := New[float32](nil)
		assert.ErrorIs(t, err, ErrEmptyIndex)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("ZeroDimension", func(t *testing.T) {
		_, err := New([][]float32{{}})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := New([][]float32{{1, 2}, {1, 2, 3}})

		var dm *DimensionMismatchError
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("Duplicates", func(t *testing.T) {
		_, err := New([][]float32{{1, 2}, {3, 4}, {1, 2}})

		var dup *DuplicatePointError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, uint32(0), dup.First)
		assert.Equal(t, uint32(2), dup.Second)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("AllowDuplicates", func(t *testing.T) {
		x, err := New([][]float32{{1, 2}, {3, 4}, {1, 2}}, AllowDuplicates())
		require.NoError(t, err)

		id, ok := x.Lookup([]float32{1, 2})
		require.True(t, ok)
		assert.Equal(t, uint32(0), id)
	})

	t.Run("FilterCount", func(t *testing.T) {
		_, err := New(seqPoints, WithFilters([]float32{1, 2}))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("EdgeCount", func(t *testing.T) {
		_, err := New(seqPoints, WithEdges([][]uint32{{1}}))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("EdgeOutOfRange", func(t *testing.T) {
		_, err := New(seqPoints, WithEdges([][]uint32{{9}, {}, {}, {}, {}, {}}))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("SelfLoop", func(t *testing.T) {
		_, err := New(seqPoints, WithEdges([][]uint32{{0}, {}, {}, {}, {}, {}}))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("RandomGraph", func(t *testing.T) {
		x, err := New(seqPoints, WithSeed(1), WithRandomGraph(1))
		require.NoError(t, err)

		for i := range x.Len() {
			deg, err := x.Graph().Degree(uint32(i))
			require.NoError(t, err)
			assert.Equal(t, x.Len()-1, deg)
		}

		_, err = New(seqPoints, WithRandomGraph(1.5))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("NaNLabel", func(t *testing.T) {
		nan := float32(0)
		nan /= nan

		_, err := New([][]float32{{1}, {2}}, WithFilters([]float32{1, nan}))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestIndex_Accessors(t *testing.T) {
	x, err := New(seqPoints, WithFilters([]float32{1, 2, 1, 2, 1, 2}))
	require.NoError(t, err)

	assert.Equal(t, 6, x.Len())
	assert.Equal(t, 3, x.Dim())
	assert.True(t, x.HasFilters())
	assert.Equal(t, 2, len(x.Filters().Values()))

	p, err := x.Point(2)
	require.NoError(t, err)
	assert.Equal(t, []int32{7, 8, 9}, p)

	_, err = x.Point(6)

	var oor *NodeOutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, uint32(6), oor.Node)
	assert.ErrorIs(t, err, ErrOutOfRange)

	id, ok := x.Lookup([]int32{13, 14, 15})
	assert.True(t, ok)
	assert.Equal(t, uint32(4), id)

	_, ok = x.Lookup([]int32{0, 0, 0})
	assert.False(t, ok)

	_, ok = x.Lookup([]int32{1, 2})
	assert.False(t, ok)
}

func TestIndex_Unlabelled(t *testing.T) {
	x, err := New(seqPoints)
	require.NoError(t, err)

	assert.False(t, x.HasFilters())
	assert.Nil(t, x.Filters())
}
