package attribute

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	x, err := New([]float32{1, 2, 1, 2, 1, 2.5})
	require.NoError(t, err)

	assert.Equal(t, 6, x.Len())
	assert.Equal(t, []float32{1, 2, 2.5}, x.Values())
	assert.Equal(t, 3, x.Count(1))
	assert.Equal(t, 0, x.Count(7))
	assert.True(t, x.Has(2.5))
	assert.False(t, x.Has(3))
	assert.True(t, x.Contains(2, 3))
	assert.False(t, x.Contains(2, 2))

	assert.Equal(t, []uint32{0, 2, 4}, x.MemberSlice(1))
	assert.Equal(t, []uint32{1, 3}, slices.Collect(x.Members(2)))
	assert.Empty(t, slices.Collect(x.Members(9)))
	assert.Nil(t, x.MemberSlice(9))

	v, ok := x.Label(5)
	assert.True(t, ok)
	assert.Equal(t, float32(2.5), v)

	_, ok = x.Label(6)
	assert.False(t, ok)
}

func TestNew_NaN(t *testing.T) {
	_, err := New([]float32{1, float32(math.NaN())})
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestSample(t *testing.T) {
	x, err := New([]float32{1, 1, 1, 1, 2})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))

	s := x.Sample(1, 2, rng)
	require.Len(t, s, 2)
	assert.NotEqual(t, s[0], s[1])

	for _, id := range s {
		assert.True(t, x.Contains(1, id))
	}

	assert.Equal(t, []uint32{4}, x.Sample(2, 5, rng))
	assert.Empty(t, x.Sample(3, 2, rng))
}

func TestSeeds(t *testing.T) {
	x, err := New([]float32{1, 2, 1, 2})
	require.NoError(t, err)

	assert.False(t, x.Seeded())

	_, ok := x.StartNode(1)
	assert.False(t, ok)

	x.SetSeeds(2, []uint32{3, 1})
	x.SetSeeds(1, []uint32{2})

	assert.True(t, x.Seeded())

	start, ok := x.StartNode(2)
	require.True(t, ok)
	assert.Equal(t, uint32(3), start)
	assert.Equal(t, []uint32{3, 1}, x.Seeds(2))
	assert.Equal(t, []uint32{2, 3}, x.StartNodes())

	x.SetSeeds(1, nil)
	assert.False(t, x.Seeded())
	assert.Equal(t, []uint32{3}, x.StartNodes())
}
