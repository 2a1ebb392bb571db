package vamana

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointStore_NegativeZero(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))

	t.Run("Duplicate", func(t *testing.T) {
		_, err := NewPointStore([][]float32{{0, 1}, {negZero, 1}}, false)

		var dup *DuplicatePointError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, uint32(0), dup.First)
		assert.Equal(t, uint32(1), dup.Second)
	})

	t.Run("Lookup", func(t *testing.T) {
		s, err := NewPointStore([][]float32{{negZero, 1}, {2, 3}}, false)
		require.NoError(t, err)

		id, ok := s.Lookup([]float32{0, 1})
		require.True(t, ok)
		assert.Equal(t, uint32(0), id)

		id, ok = s.Lookup([]float32{negZero, 1})
		require.True(t, ok)
		assert.Equal(t, uint32(0), id)
	})

	t.Run("PointUnchanged", func(t *testing.T) {
		s, err := NewPointStore([][]float32{{negZero, 1}}, false)
		require.NoError(t, err)
		assert.True(t, math.Signbit(float64(s.Point(0)[0])))
	})
}

func TestPointStore_NaN(t *testing.T) {
	nan := float32(math.NaN())

	s, err := NewPointStore([][]float32{{nan, 1}, {1, 1}}, false)
	require.NoError(t, err)

	id, ok := s.Lookup([]float32{nan, 1})
	require.True(t, ok)
	assert.Equal(t, uint32(0), id)
}

func TestPointStore_Integers(t *testing.T) {
	s, err := NewPointStore(seqPoints, false)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())
	assert.Equal(t, 3, s.Dim())

	id, ok := s.Lookup([]int32{7, 8, 9})
	require.True(t, ok)
	assert.Equal(t, uint32(2), id)

	_, ok = s.Lookup([]int32{0, 0, 0})
	assert.False(t, ok)
}
