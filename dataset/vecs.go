package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/hupe1980/vamana/internal/mmap"
)

var (
	// ErrTruncated is returned when input ends inside a record.
	ErrTruncated = errors.New("dataset: truncated input")

	// ErrInvalidDimension is returned for a record with a non-positive
	// dimension or a dimension differing from the first record.
	ErrInvalidDimension = errors.New("dataset: invalid dimension")

	// ErrUnknownFormat is returned for an unrecognized file extension.
	ErrUnknownFormat = errors.New("dataset: unknown format")
)

// Format identifies a vecs file flavor.
type Format int

const (
	FormatFvecs Format = iota
	FormatIvecs
	FormatBvecs
)

func (f Format) String() string {
	switch f {
	case FormatFvecs:
		return "fvecs"
	case FormatIvecs:
		return "ivecs"
	case FormatBvecs:
		return "bvecs"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	for _, f := range []Format{FormatFvecs, FormatIvecs, FormatBvecs} {
		if f.String() == ext {
			return f, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// maxDim bounds record dimensions to keep corrupt headers from triggering
// huge allocations.
const maxDim = 1 << 20

func readVecs[T any](r io.Reader, size int, decode func([]byte) T) ([][]T, error) {
	br := bufio.NewReader(r)

	var (
		out  [][]T
		hdr  [4]byte
		dim0 = -1
		buf  []byte
	)

	for {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}

			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: record %d header", ErrTruncated, len(out))
			}

			return nil, err
		}

		dim := int(int32(binary.LittleEndian.Uint32(hdr[:])))
		if dim <= 0 || dim > maxDim || (dim0 >= 0 && dim != dim0) {
			return nil, fmt.Errorf("%w: record %d has dimension %d", ErrInvalidDimension, len(out), dim)
		}

		dim0 = dim

		if cap(buf) < dim*size {
			buf = make([]byte, dim*size)
		}

		buf = buf[:dim*size]

		if _, err := io.ReadFull(br, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: record %d body", ErrTruncated, len(out))
			}

			return nil, err
		}

		vec := make([]T, dim)
		for i := range vec {
			vec[i] = decode(buf[i*size:])
		}

		out = append(out, vec)
	}
}

func float32At(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }

func int32At(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) }

func uint8At(b []byte) uint8 { return b[0] }

// ReadFvecs reads float32 vectors.
func ReadFvecs(r io.Reader) ([][]float32, error) {
	return readVecs(r, 4, float32At)
}

// ReadIvecs reads int32 vectors.
func ReadIvecs(r io.Reader) ([][]int32, error) {
	return readVecs(r, 4, int32At)
}

// ReadBvecs reads uint8 vectors.
func ReadBvecs(r io.Reader) ([][]uint8, error) {
	return readVecs(r, 1, uint8At)
}

// ReadGroundTruth reads an ivecs file of neighbor ids, one row per query.
func ReadGroundTruth(r io.Reader) ([][]uint32, error) {
	rows, err := ReadIvecs(r)
	if err != nil {
		return nil, err
	}

	out := make([][]uint32, len(rows))

	for i, row := range rows {
		out[i] = make([]uint32, len(row))

		for j, id := range row {
			if id < 0 {
				return nil, fmt.Errorf("dataset: negative id %d in ground truth row %d", id, i)
			}

			out[i][j] = uint32(id)
		}
	}

	return out, nil
}

// load maps path and runs read over its contents.
func load[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T

	m, err := mmap.Open(path)
	if err != nil {
		return zero, err
	}
	defer m.Close()

	_ = m.Advise(mmap.AccessSequential)

	v, err := read(m.Reader())
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}

	return v, nil
}

// LoadFvecs reads a .fvecs file.
func LoadFvecs(path string) ([][]float32, error) { return load(path, ReadFvecs) }

// LoadIvecs reads a .ivecs file.
func LoadIvecs(path string) ([][]int32, error) { return load(path, ReadIvecs) }

// LoadBvecs reads a .bvecs file.
func LoadBvecs(path string) ([][]uint8, error) { return load(path, ReadBvecs) }

// LoadGroundTruth reads an .ivecs ground-truth file.
func LoadGroundTruth(path string) ([][]uint32, error) { return load(path, ReadGroundTruth) }
