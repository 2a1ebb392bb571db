package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() usage.
var (
	ErrNodeOutOfRange     = errors.New("graph: node out of range")
	ErrSelfLoop           = errors.New("graph: self-loop not allowed")
	ErrNegativeDegree     = errors.New("graph: degree bound must not be negative")
	ErrInvalidProbability = errors.New("graph: edge probability must be in [0, 1]")
	ErrInvalidFormat      = errors.New("graph: invalid file format")
	ErrChecksum           = errors.New("graph: checksum mismatch")
	ErrNodeCount          = errors.New("graph: node count mismatch")
)

// NodeOutOfRangeError wraps ErrNodeOutOfRange with the offending node.
type NodeOutOfRangeError struct {
	Node  uint32
	Count int
}

func (e *NodeOutOfRangeError) Error() string {
	return fmt.Sprintf("graph: node %d out of range [0, %d)", e.Node, e.Count)
}

func (e *NodeOutOfRangeError) Is(target error) bool {
	return target == ErrNodeOutOfRange
}

func (e *NodeOutOfRangeError) Unwrap() error {
	return ErrNodeOutOfRange
}
