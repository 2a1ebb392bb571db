package main

import (
	"fmt"

	"github.com/hupe1980/vamana/dataset"
	"github.com/hupe1980/vamana/distance"
	"github.com/hupe1980/vamana/eval"
)

const formatContest = "contest"

// input is a loaded base file plus its queries. Labels is nil for
// unlabelled formats.
type input[T distance.Number] struct {
	Points  [][]T
	Labels  []float32
	Queries []eval.Query[T]
}

func dataFormat(d *DataConfig) (string, error) {
	if d.Format != "" {
		switch d.Format {
		case formatContest, dataset.FormatFvecs.String(), dataset.FormatIvecs.String(), dataset.FormatBvecs.String():
			return d.Format, nil
		default:
			return "", fmt.Errorf("%w: %q", dataset.ErrUnknownFormat, d.Format)
		}
	}

	f, err := dataset.FormatOf(d.Base)
	if err != nil {
		return "", err
	}

	return f.String(), nil
}

// dispatch loads the input described by d and passes it to the handler
// matching its element type.
func dispatch(d *DataConfig, withQueries bool,
	f32 func(*input[float32]) error,
	i32 func(*input[int32]) error,
	u8 func(*input[uint8]) error,
) error {
	if d.Base == "" {
		return ErrMissingBase
	}

	if withQueries && d.Queries == "" {
		return fmt.Errorf("queries file is required")
	}

	format, err := dataFormat(d)
	if err != nil {
		return err
	}

	switch format {
	case formatContest:
		in, err := loadContest(d, withQueries)
		if err != nil {
			return err
		}

		return f32(in)
	case dataset.FormatIvecs.String():
		in, err := loadVecs(d, withQueries, dataset.LoadIvecs)
		if err != nil {
			return err
		}

		return i32(in)
	case dataset.FormatBvecs.String():
		in, err := loadVecs(d, withQueries, dataset.LoadBvecs)
		if err != nil {
			return err
		}

		return u8(in)
	default:
		in, err := loadVecs(d, withQueries, dataset.LoadFvecs)
		if err != nil {
			return err
		}

		return f32(in)
	}
}

func loadVecs[T distance.Number](d *DataConfig, withQueries bool, load func(string) ([][]T, error)) (*input[T], error) {
	points, err := load(d.Base)
	if err != nil {
		return nil, fmt.Errorf("loading base: %w", err)
	}

	in := &input[T]{Points: points}

	if !withQueries {
		return in, nil
	}

	queries, err := load(d.Queries)
	if err != nil {
		return nil, fmt.Errorf("loading queries: %w", err)
	}

	in.Queries = make([]eval.Query[T], len(queries))
	for i, q := range queries {
		in.Queries[i] = eval.Query[T]{Point: q}
	}

	return in, nil
}

func loadContest(d *DataConfig, withQueries bool) (*input[float32], error) {
	base, err := dataset.LoadContestBase(d.Base, d.Dim)
	if err != nil {
		return nil, fmt.Errorf("loading base: %w", err)
	}

	in := &input[float32]{Points: base.Points, Labels: base.Labels}

	if !withQueries {
		return in, nil
	}

	queries, err := dataset.LoadContestQueries(d.Queries, d.Dim)
	if err != nil {
		return nil, fmt.Errorf("loading queries: %w", err)
	}

	in.Queries = make([]eval.Query[float32], len(queries))
	for i, q := range queries {
		in.Queries[i] = eval.Query[float32]{Point: q.Point}

		if q.Filtered() {
			label := q.Label
			in.Queries[i].Label = &label
		}
	}

	return in, nil
}
