package vamana

import (
	"slices"
	"unsafe"

	"github.com/hupe1980/vamana/distance"
)

// PointStore maps node ids to points and back. It is immutable after
// construction and safe for concurrent reads.
type PointStore[T distance.Number] struct {
	points [][]T
	dim    int
	dist   distance.Func[T]
	ids    map[string]uint32
}

// NewPointStore indexes points. Every point must have the same, non-zero
// dimension. Identical points are rejected unless allowDuplicates is set, in
// which case Lookup returns the lowest id.
//
// Points are identical when their coordinates match bit for bit, except that
// -0 and +0 are the same coordinate. A NaN coordinate only matches a NaN with
// the same bit pattern.
func NewPointStore[T distance.Number](points [][]T, allowDuplicates bool) (*PointStore[T], error) {
	if len(points) == 0 {
		return nil, ErrEmptyIndex
	}

	dim := len(points[0])
	if dim == 0 {
		return nil, invalidArgument("points must have at least one coordinate")
	}

	if uint64(len(points)) > uint64(^uint32(0)) {
		return nil, invalidArgument("%d points exceed the uint32 id space", len(points))
	}

	s := &PointStore[T]{
		points: points,
		dim:    dim,
		dist:   distance.SquaredL2[T],
		ids:    make(map[string]uint32, len(points)),
	}

	for i, p := range points {
		if len(p) != dim {
			return nil, &DimensionMismatchError{Expected: dim, Actual: len(p)}
		}

		key := pointKey(p)
		if first, ok := s.ids[key]; ok {
			if !allowDuplicates {
				return nil, &DuplicatePointError{First: first, Second: uint32(i)}
			}

			continue
		}

		s.ids[key] = uint32(i)
	}

	return s, nil
}

// pointKey returns the raw coordinate bytes of p with -0 folded into +0.
func pointKey[T distance.Number](p []T) string {
	if slices.Contains(p, 0) {
		p = slices.Clone(p)
		for i, v := range p {
			if v == 0 {
				p[i] = 0
			}
		}
	}

	var zero T
	return string(unsafe.Slice((*byte)(unsafe.Pointer(&p[0])), len(p)*int(unsafe.Sizeof(zero)))) //nolint:gosec // read-only view
}

// Len returns the number of points.
func (s *PointStore[T]) Len() int { return len(s.points) }

// Dim returns the dimension shared by all points.
func (s *PointStore[T]) Dim() int { return s.dim }

// Point returns the point of node id. The slice must not be modified.
func (s *PointStore[T]) Point(id uint32) []T { return s.points[id] }

// Lookup returns the node id of an indexed point.
func (s *PointStore[T]) Lookup(p []T) (uint32, bool) {
	if len(p) != s.dim {
		return 0, false
	}

	id, ok := s.ids[pointKey(p)]

	return id, ok
}

// Distance returns the squared L2 distance between nodes a and b.
func (s *PointStore[T]) Distance(a, b uint32) float64 {
	return s.dist(s.points[a], s.points[b])
}
