package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// DefaultContestDim is the point dimension of the contest files.
const DefaultContestDim = 100

// Base holds labelled points.
type Base struct {
	Points [][]float32
	Labels []float32
}

// QueryType is the kind of a contest query.
type QueryType int

const (
	// QueryUnfiltered ignores labels.
	QueryUnfiltered QueryType = 0
	// QueryFiltered restricts results to one label.
	QueryFiltered QueryType = 1
)

// Query is one contest query.
type Query struct {
	Type  QueryType
	Label float32
	Point []float32
}

// Filtered reports whether q restricts results to its label.
func (q Query) Filtered() bool { return q.Type == QueryFiltered }

type floatReader struct {
	r   *bufio.Reader
	buf []byte
}

func (f *floatReader) count() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(f.r, b[:]); err != nil {
		return 0, truncated(err, "count")
	}

	return binary.LittleEndian.Uint32(b[:]), nil
}

// floats reads n float32 values into dst, or skips them when dst is nil.
func (f *floatReader) floats(dst []float32, n int, what string) error {
	if cap(f.buf) < 4*n {
		f.buf = make([]byte, 4*n)
	}

	b := f.buf[:4*n]
	if _, err := io.ReadFull(f.r, b); err != nil {
		return truncated(err, what)
	}

	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}

	return nil
}

func truncated(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}

	return err
}

// ReadContestBase reads a labelled base file with points of dimension dim.
// The timestamp attribute is skipped.
func ReadContestBase(r io.Reader, dim int) (*Base, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}

	fr := &floatReader{r: bufio.NewReader(r)}

	n, err := fr.count()
	if err != nil {
		return nil, err
	}

	b := &Base{
		Points: make([][]float32, 0, min(int(n), 1<<20)),
		Labels: make([]float32, 0, min(int(n), 1<<20)),
	}

	data := make([]float32, 0, min(int(n), 1<<20)*dim)
	attrs := make([]float32, 2)

	for i := range int(n) {
		if err := fr.floats(attrs, 2, fmt.Sprintf("point %d attributes", i)); err != nil {
			return nil, err
		}

		start := len(data)
		data = append(data, make([]float32, dim)...)

		if err := fr.floats(data[start:], dim, fmt.Sprintf("point %d", i)); err != nil {
			return nil, err
		}

		b.Labels = append(b.Labels, attrs[0])
	}

	for i := range b.Labels {
		b.Points = append(b.Points, data[i*dim:(i+1)*dim:(i+1)*dim])
	}

	return b, nil
}

// ReadContestQueries reads a query file with points of dimension dim,
// keeping only unfiltered and label-filtered queries.
func ReadContestQueries(r io.Reader, dim int) ([]Query, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}

	fr := &floatReader{r: bufio.NewReader(r)}

	n, err := fr.count()
	if err != nil {
		return nil, err
	}

	var out []Query

	attrs := make([]float32, 4)

	for i := range int(n) {
		if err := fr.floats(attrs, 4, fmt.Sprintf("query %d attributes", i)); err != nil {
			return nil, err
		}

		point := make([]float32, dim)
		if err := fr.floats(point, dim, fmt.Sprintf("query %d", i)); err != nil {
			return nil, err
		}

		switch t := QueryType(attrs[0]); t {
		case QueryUnfiltered, QueryFiltered:
			out = append(out, Query{Type: t, Label: attrs[1], Point: point})
		}
	}

	return out, nil
}

// LoadContestBase reads a contest base file.
func LoadContestBase(path string, dim int) (*Base, error) {
	return load(path, func(r io.Reader) (*Base, error) { return ReadContestBase(r, dim) })
}

// LoadContestQueries reads a contest query file.
func LoadContestQueries(path string, dim int) ([]Query, error) {
	return load(path, func(r io.Reader) ([]Query, error) { return ReadContestQueries(r, dim) })
}
