// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package query turns value-space requests against a gridded dataset
// into chunk-level reads and assembles the results.  A query names one
// variable and constrains its dimensions three ways: explicit index
// ranges, coordinate value bounds (a bounding box edge, a height
// band), or timestamp bounds on the time axis.  Value-space bounds are
// translated to index ranges by binary search over the coordinate
// variables, the planner maps the index box onto the chunk grid, and
// the executor fetches each intersecting chunk once and copies its
// overlap into a contiguous C-order result buffer.
package query

import (
	"context"
	"sort"
	"time"

	"github.com/gridpub/gridpub/grid"
)

// DefaultMaxElements bounds the result size of a query that does not
// set its own limit.  2^21 float64 elements is 16 MiB of values.
const DefaultMaxElements = 1 << 21

// Range is a half-open index interval [Start, Stop) along one
// dimension.
type Range struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.Stop <= r.Start {
		return 0
	}
	return r.Stop - r.Start
}

// Bounds is an inclusive coordinate value interval along one
// dimension.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Query describes one read against a dataset.  Dimensions not
// constrained by any of the maps take their full extent.
type Query struct {
	// Variable is the data variable to read.
	Variable string

	// Index constrains dimensions by explicit index ranges.
	Index map[string]Range

	// Coord constrains dimensions by coordinate values, inclusive
	// on both ends.  The dimension must have a one-dimensional
	// coordinate variable.
	Coord map[string]Bounds

	// Start and End constrain the variable's time axis, if it has
	// one, inclusive on both ends.
	Start *time.Time
	End   *time.Time

	// MaxElements caps the result size; zero means
	// DefaultMaxElements.
	MaxElements int
}

// Result is an assembled query result: a dense C-order box of values
// with the coordinate values that position it.
type Result struct {
	// Variable is the variable that was read.
	Variable string

	// Dims and Shape describe the box, parallel slices in the
	// variable's dimension order.
	Dims  []string
	Shape []int

	// Offset is the starting index of the box along each
	// dimension, parallel to Dims.
	Offset []int

	// Coords holds the coordinate values covering the box for each
	// dimension that has a coordinate variable.
	Coords map[string][]float64

	// Values is the box's data in C order, fill values
	// materialized.
	Values []float64
}

// Elements returns the number of values in the result box.
func (res *Result) Elements() int {
	n := 1
	for _, length := range res.Shape {
		n *= length
	}
	return n
}

// Execute resolves, plans, and runs a query against a dataset.
func Execute(ctx context.Context, ds *grid.Dataset, q Query) (*Result, error) {
	v, err := ds.Variable(q.Variable)
	if err != nil {
		return nil, err
	}

	ranges, err := resolveRanges(ctx, v, q)
	if err != nil {
		return nil, err
	}

	limit := q.MaxElements
	if limit <= 0 {
		limit = DefaultMaxElements
	}
	elements := 1
	for _, r := range ranges {
		elements *= r.Len()
	}
	if elements > limit {
		return nil, ErrTooLarge{Elements: elements, Limit: limit}
	}

	plan := makePlan(v, ranges)
	return plan.run(ctx)
}

// resolveRanges turns the query's constraints into one index range per
// dimension of the variable, clipped to the variable's shape.
func resolveRanges(ctx context.Context, v *grid.Variable, q Query) ([]Range, error) {
	dims := v.Dims()
	shape := v.Meta().Shape
	ranges := make([]Range, len(dims))
	for i := range ranges {
		ranges[i] = Range{Start: 0, Stop: shape[i]}
	}

	byName := map[string]int{}
	for i, dim := range dims {
		byName[dim] = i
	}

	for dim, r := range q.Index {
		i, present := byName[dim]
		if !present {
			return nil, ErrBadSelection{Dim: dim, Reason: "not a dimension of " + v.Name()}
		}
		if r.Start < 0 || r.Stop < r.Start {
			return nil, ErrBadSelection{Dim: dim, Reason: "invalid index range"}
		}
		ranges[i] = clip(r, shape[i])
	}

	for dim, bounds := range q.Coord {
		i, present := byName[dim]
		if !present {
			return nil, ErrBadSelection{Dim: dim, Reason: "not a dimension of " + v.Name()}
		}
		coord := v.Dataset().Coordinate(dim)
		if coord == nil {
			return nil, ErrBadSelection{Dim: dim, Reason: "no coordinate variable"}
		}
		values, err := coord.Values(ctx)
		if err != nil {
			return nil, err
		}
		r, err := CoordRange(values, bounds)
		if err != nil {
			return nil, ErrBadSelection{Dim: dim, Reason: err.Error()}
		}
		ranges[i] = intersect(ranges[i], r)
	}

	if q.Start != nil || q.End != nil {
		coord := v.AxisCoordinate(grid.AxisTime)
		if coord == nil {
			return nil, ErrBadSelection{Dim: "time", Reason: "variable has no time axis"}
		}
		stamps, err := coord.TimeValues(ctx)
		if err != nil {
			return nil, err
		}
		i := byName[coord.Name()]
		ranges[i] = intersect(ranges[i], TimeRange(stamps, q.Start, q.End))
	}

	return ranges, nil
}

func clip(r Range, length int) Range {
	if r.Stop > length {
		r.Stop = length
	}
	if r.Start > r.Stop {
		r.Start = r.Stop
	}
	return r
}

func intersect(a, b Range) Range {
	if b.Start > a.Start {
		a.Start = b.Start
	}
	if b.Stop < a.Stop {
		a.Stop = b.Stop
	}
	if a.Start > a.Stop {
		a.Start = a.Stop
	}
	return a
}

// CoordRange finds the index range of coordinate values falling within
// bounds, inclusive.  The coordinate must be monotonic; both ascending
// and descending orders occur in real datasets (latitude is stored
// north-to-south at least as often as not).
func CoordRange(values []float64, bounds Bounds) (Range, error) {
	if len(values) < 2 || values[0] <= values[len(values)-1] {
		if !sort.Float64sAreSorted(values) {
			return Range{}, errNotMonotonic
		}
		lo := sort.Search(len(values), func(i int) bool {
			return values[i] >= bounds.Min
		})
		hi := sort.Search(len(values), func(i int) bool {
			return values[i] > bounds.Max
		})
		return Range{Start: lo, Stop: hi}, nil
	}

	// Descending.
	if !sort.SliceIsSorted(values, func(i, j int) bool {
		return values[i] > values[j]
	}) {
		return Range{}, errNotMonotonic
	}
	lo := sort.Search(len(values), func(i int) bool {
		return values[i] <= bounds.Max
	})
	hi := sort.Search(len(values), func(i int) bool {
		return values[i] < bounds.Min
	})
	return Range{Start: lo, Stop: hi}, nil
}

// TimeRange finds the index range of timestamps within [start, end],
// inclusive; a nil bound is unbounded.  Timestamps must be ascending.
func TimeRange(stamps []time.Time, start, end *time.Time) Range {
	lo := 0
	if start != nil {
		lo = sort.Search(len(stamps), func(i int) bool {
			return !stamps[i].Before(*start)
		})
	}
	hi := len(stamps)
	if end != nil {
		hi = sort.Search(len(stamps), func(i int) bool {
			return stamps[i].After(*end)
		})
	}
	if lo > hi {
		lo = hi
	}
	return Range{Start: lo, Stop: hi}
}
