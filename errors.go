package vamana

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vamana/attribute"
	"github.com/hupe1980/vamana/graph"
)

// Error taxonomy. Every error returned by an Index matches exactly one of
// these with errors.Is.
var (
	// ErrInvalidArgument reports a malformed parameter or input.
	ErrInvalidArgument = errors.New("vamana: invalid argument")

	// ErrOutOfRange reports a node id outside [0, n).
	ErrOutOfRange = errors.New("vamana: node out of range")

	// ErrInternal reports a broken invariant during construction.
	ErrInternal = errors.New("vamana: internal invariant violated")
)

var (
	// ErrEmptyIndex is returned when constructing an index without points.
	ErrEmptyIndex = fmt.Errorf("%w: empty index", ErrInvalidArgument)

	// ErrInvalidK is returned when k is negative or exceeds the search budget.
	ErrInvalidK = fmt.Errorf("%w: k must satisfy 0 <= k <= L", ErrInvalidArgument)

	// ErrNoFilters is returned for filtered operations on an unlabelled index.
	ErrNoFilters = fmt.Errorf("%w: index has no filters", ErrInvalidArgument)

	// ErrNoStartNodes is returned when a traversal has nowhere to begin.
	ErrNoStartNodes = fmt.Errorf("%w: no start nodes", ErrInvalidArgument)
)

// NodeOutOfRangeError reports the offending node id.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type NodeOutOfRangeError struct {
	Node  uint32
	Count int
	cause error
}

func (e *NodeOutOfRangeError) Error() string {
	return fmt.Sprintf("vamana: node %d out of range [0, %d)", e.Node, e.Count)
}

func (e *NodeOutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

func (e *NodeOutOfRangeError) Unwrap() error { return e.cause }

// DimensionMismatchError indicates a point or query of the wrong length.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vamana: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrInvalidArgument }

// DuplicatePointError reports two nodes with identical coordinates.
type DuplicatePointError struct {
	First  uint32
	Second uint32
}

func (e *DuplicatePointError) Error() string {
	return fmt.Sprintf("vamana: points %d and %d are identical", e.First, e.Second)
}

func (e *DuplicatePointError) Is(target error) bool { return target == ErrInvalidArgument }

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func internalError(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// translateError maps errors of the graph and attribute packages onto the
// taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var oor *graph.NodeOutOfRangeError
	if errors.As(err, &oor) {
		return &NodeOutOfRangeError{Node: oor.Node, Count: oor.Count, cause: err}
	}

	if errors.Is(err, graph.ErrSelfLoop) ||
		errors.Is(err, graph.ErrNegativeDegree) ||
		errors.Is(err, graph.ErrInvalidProbability) ||
		errors.Is(err, attribute.ErrInvalidLabel) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
