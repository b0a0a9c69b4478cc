// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package query

import (
	"context"

	"github.com/gridpub/gridpub/grid"
)

// plan is an index box mapped onto a variable's chunk grid.
type plan struct {
	variable *grid.Variable
	ranges   []Range

	// projections[d] lists, for dimension d, every chunk the range
	// touches along that axis and how it maps into the result.
	projections [][]dimProjection
}

// dimProjection maps one chunk's overlap with the selection along one
// dimension.  The overlap is rows [chunkLo, chunkHi) of chunk number
// chunk, landing at row outLo of the result.
type dimProjection struct {
	chunk   int
	chunkLo int
	chunkHi int
	outLo   int
}

func makePlan(v *grid.Variable, ranges []Range) *plan {
	meta := v.Meta()
	projections := make([][]dimProjection, len(ranges))
	for d, r := range ranges {
		if r.Len() == 0 {
			continue
		}
		chunk := meta.Chunks[d]
		for c := r.Start / chunk; c <= (r.Stop-1)/chunk; c++ {
			lo := r.Start - c*chunk
			if lo < 0 {
				lo = 0
			}
			hi := r.Stop - c*chunk
			if hi > chunk {
				hi = chunk
			}
			projections[d] = append(projections[d], dimProjection{
				chunk:   c,
				chunkLo: lo,
				chunkHi: hi,
				outLo:   c*chunk + lo - r.Start,
			})
		}
	}
	return &plan{variable: v, ranges: ranges, projections: projections}
}

// run fetches every chunk the plan touches, each exactly once, and
// assembles the result box.
func (p *plan) run(ctx context.Context) (*Result, error) {
	v := p.variable
	res := &Result{
		Variable: v.Name(),
		Dims:     v.Dims(),
		Shape:    make([]int, len(p.ranges)),
		Offset:   make([]int, len(p.ranges)),
		Coords:   map[string][]float64{},
	}
	for d, r := range p.ranges {
		res.Shape[d] = r.Len()
		res.Offset[d] = r.Start
	}
	res.Values = make([]float64, res.Elements())

	for d, dim := range res.Dims {
		coord := v.Dataset().Coordinate(dim)
		if coord == nil {
			continue
		}
		values, err := coord.Values(ctx)
		if err != nil {
			return nil, err
		}
		r := p.ranges[d]
		res.Coords[dim] = values[r.Start:r.Stop]
	}

	if res.Elements() == 0 {
		return res, nil
	}

	outStrides := cStrides(res.Shape)
	chunkStrides := cStrides(v.Meta().Chunks)

	// Walk the cartesian product of per-dimension projections; each
	// combination is one chunk intersecting the selection.
	pick := make([]dimProjection, len(p.projections))
	var visit func(d int) error
	visit = func(d int) error {
		if d == len(p.projections) {
			return p.copyChunk(ctx, pick, outStrides, chunkStrides, res.Values)
		}
		for _, proj := range p.projections[d] {
			pick[d] = proj
			if err := visit(d + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(0); err != nil {
		return nil, err
	}
	return res, nil
}

// copyChunk reads one chunk and copies its overlap into the result
// buffer.  The innermost dimension is contiguous in both the chunk and
// the result, so it copies whole rows.
func (p *plan) copyChunk(ctx context.Context, pick []dimProjection, outStrides, chunkStrides []int, out []float64) error {
	indices := make([]int, len(pick))
	for d, proj := range pick {
		indices[d] = proj.chunk
	}
	values, err := p.variable.Chunk(ctx, indices)
	if err != nil {
		return err
	}

	if len(pick) == 0 {
		// Zero-dimensional variable; the whole array is one value.
		out[0] = values[0]
		return nil
	}

	last := len(pick) - 1
	rowLen := pick[last].chunkHi - pick[last].chunkLo

	var rows func(d, chunkOff, outOff int)
	rows = func(d, chunkOff, outOff int) {
		if d == last {
			chunkOff += pick[d].chunkLo * chunkStrides[d]
			outOff += pick[d].outLo * outStrides[d]
			copy(out[outOff:outOff+rowLen], values[chunkOff:chunkOff+rowLen])
			return
		}
		for i := pick[d].chunkLo; i < pick[d].chunkHi; i++ {
			rows(d+1,
				chunkOff+i*chunkStrides[d],
				outOff+(pick[d].outLo+i-pick[d].chunkLo)*outStrides[d])
		}
	}
	rows(0, 0, 0)
	return nil
}

// cStrides returns the element stride of each dimension of a C-order
// array with the given shape.
func cStrides(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= shape[d]
	}
	return strides
}
