package distance

import "fmt"

// Number is the set of element types a point may be made of.
//
// Byte (bvecs), int (ivecs) and float (fvecs) datasets are all covered.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Func is a function type for distance calculation.
type Func[T Number] func(a, b []T) float64

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
//
// Differences are taken in float64 so that unsigned and narrow integer element
// types neither wrap around nor overflow. Assumes vectors are the same length
// (caller's responsibility); extra elements of the longer vector are ignored.
func SquaredL2[T Number](a, b []T) float64 {
	n := min(len(a), len(b))
	a, b = a[:n], b[:n]

	var sum float64
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := float64(a[i]) - float64(b[i])
		d1 := float64(a[i+1]) - float64(b[i+1])
		d2 := float64(a[i+2]) - float64(b[i+2])
		d3 := float64(a[i+3]) - float64(b[i+3])
		sum += d0*d0 + d1*d1 + d2*d2 + d3*d3
	}
	for ; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricL2 is squared Euclidean distance.
	MetricL2 Metric = iota
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Provider returns the distance function for the given metric.
func Provider[T Number](m Metric) (Func[T], error) {
	switch m {
	case MetricL2:
		return SquaredL2[T], nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
