package vamana

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/vamana/blobstore"
	"github.com/hupe1980/vamana/graph"
)

// SaveGraph writes the graph to w in the binary graph format.
func (x *Index[T]) SaveGraph(w io.Writer, c graph.Compression) error {
	return translateError(graph.Encode(w, x.graph, c))
}

// LoadGraph replaces the graph by one read from r. The stored node count
// must equal Len and is checked before any record is read. LoadGraph must
// not run concurrently with searches or builds.
func (x *Index[T]) LoadGraph(r io.Reader) error {
	g, err := graph.DecodeN(r, x.Len())
	if err != nil {
		if errors.Is(err, graph.ErrInvalidFormat) ||
			errors.Is(err, graph.ErrChecksum) ||
			errors.Is(err, graph.ErrNodeCount) {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}

		return translateError(err)
	}

	x.graph = g

	return nil
}

// SaveGraphTo writes the graph to the blob name in store.
func (x *Index[T]) SaveGraphTo(ctx context.Context, store blobstore.BlobStore, name string, c graph.Compression) (err error) {
	defer func() { x.logger.LogSave(ctx, name, err) }()

	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("vamana: create %s: %w", name, err)
	}

	if err := x.SaveGraph(w, c); err != nil {
		_ = w.Close()
		return err
	}

	if err := w.Sync(); err != nil {
		_ = w.Close()
		return fmt.Errorf("vamana: sync %s: %w", name, err)
	}

	return w.Close()
}

// LoadGraphFrom replaces the graph by the one stored in the blob name.
func (x *Index[T]) LoadGraphFrom(ctx context.Context, store blobstore.BlobStore, name string) (err error) {
	defer func() { x.logger.LogLoad(ctx, name, x.graph.Len(), err) }()

	b, err := store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("vamana: open %s: %w", name, err)
	}
	defer b.Close()

	r, err := blobstore.NewReader(ctx, b)
	if err != nil {
		return fmt.Errorf("vamana: read %s: %w", name, err)
	}
	defer r.Close()

	return x.LoadGraph(r)
}
