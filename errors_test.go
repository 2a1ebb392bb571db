package vamana

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/vamana/graph"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	err := translateError(&graph.NodeOutOfRangeError{Node: 9, Count: 3})

	var oor *NodeOutOfRangeError
	assert.ErrorAs(t, err, &oor)
	assert.Equal(t, uint32(9), oor.Node)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, err, graph.ErrNodeOutOfRange)
	assert.NotErrorIs(t, err, ErrInvalidArgument)

	for _, e := range []error{graph.ErrSelfLoop, graph.ErrNegativeDegree, graph.ErrInvalidProbability} {
		assert.ErrorIs(t, translateError(e), ErrInvalidArgument)
		assert.ErrorIs(t, translateError(e), e)
	}

	other := errors.New("other")
	assert.Equal(t, other, translateError(other))
}

func TestErrorTaxonomy(t *testing.T) {
	for _, err := range []error{ErrEmptyIndex, ErrInvalidK, ErrNoFilters, ErrNoStartNodes} {
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.NotErrorIs(t, err, ErrOutOfRange)
	}

	assert.ErrorIs(t, &DimensionMismatchError{Expected: 1, Actual: 2}, ErrInvalidArgument)
	assert.ErrorIs(t, &DuplicatePointError{First: 0, Second: 1}, ErrInvalidArgument)
	assert.ErrorIs(t, internalError(fmt.Errorf("x")), ErrInternal)
	assert.Equal(t, "vamana: node 4 out of range [0, 2)", (&NodeOutOfRangeError{Node: 4, Count: 2}).Error())
}
