package vamana

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vamana/blobstore"
	"github.com/hupe1980/vamana/graph"
	"github.com/hupe1980/vamana/testutil"
)

func builtIndex(t *testing.T) *Index[float32] {
	t.Helper()

	x, err := New(testutil.NewRNG(8).UniformVectors(120, 4), WithSeed(8))
	require.NoError(t, err)

	opts := DefaultBuildOptions()
	opts.L, opts.R = 20, 6

	require.NoError(t, x.Vamana(context.Background(), opts))

	return x
}

func TestSaveLoadGraph(t *testing.T) {
	src := builtIndex(t)

	for _, c := range []graph.Compression{graph.CompressionNone, graph.CompressionLZ4, graph.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, src.SaveGraph(&buf, c))

			dst, err := New(testutil.NewRNG(8).UniformVectors(120, 4))
			require.NoError(t, err)

			require.NoError(t, dst.LoadGraph(&buf))
			assert.True(t, src.Graph().Equal(dst.Graph()))
		})
	}
}

func TestLoadGraph_Errors(t *testing.T) {
	src := builtIndex(t)

	var buf bytes.Buffer
	require.NoError(t, src.SaveGraph(&buf, graph.CompressionNone))

	t.Run("NodeCount", func(t *testing.T) {
		dst, err := New(seqPoints)
		require.NoError(t, err)

		before := dst.Graph()
		assert.ErrorIs(t, dst.LoadGraph(bytes.NewReader(buf.Bytes())), ErrInvalidArgument)
		assert.Same(t, before, dst.Graph())
	})

	t.Run("Corrupt", func(t *testing.T) {
		data := bytes.Clone(buf.Bytes())
		data[len(data)-1] ^= 0xFF

		dst, err := New(testutil.NewRNG(8).UniformVectors(120, 4))
		require.NoError(t, err)

		err = dst.LoadGraph(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, err, graph.ErrChecksum)
	})

	t.Run("HugeCount", func(t *testing.T) {
		h := bytes.Clone(buf.Bytes()[:graph.HeaderSize])
		binary.LittleEndian.PutUint32(h[12:], 1<<31)

		dst, err := New(seqPoints)
		require.NoError(t, err)

		before := dst.Graph()
		err = dst.LoadGraph(bytes.NewReader(h))
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, err, graph.ErrNodeCount)
		assert.Same(t, before, dst.Graph())
	})

	t.Run("Garbage", func(t *testing.T) {
		dst, err := New(seqPoints)
		require.NoError(t, err)

		err = dst.LoadGraph(bytes.NewReader([]byte("not a graph at all")))
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, err, graph.ErrInvalidFormat)
	})
}

func TestSaveLoadGraph_BlobStore(t *testing.T) {
	ctx := context.Background()
	src := builtIndex(t)

	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, src.SaveGraphTo(ctx, store, "graphs/test.graph", graph.CompressionZSTD))

			names, err := store.List(ctx, "graphs/")
			require.NoError(t, err)
			assert.Equal(t, []string{"graphs/test.graph"}, names)

			dst, err := New(testutil.NewRNG(8).UniformVectors(120, 4))
			require.NoError(t, err)

			require.NoError(t, dst.LoadGraphFrom(ctx, store, "graphs/test.graph"))
			assert.True(t, src.Graph().Equal(dst.Graph()))

			err = dst.LoadGraphFrom(ctx, store, "graphs/missing.graph")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}
