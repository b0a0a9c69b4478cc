// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/grid/gridtest"
	"github.com/gridpub/gridpub/query"
)

func demoDataset(t *testing.T) *grid.Dataset {
	ds, err := grid.Open(context.Background(), gridtest.DemoStore(true), "demo")
	require.NoError(t, err)
	return ds
}

// at indexes a result box by per-dimension positions.
func at(res *query.Result, pos ...int) float64 {
	i := 0
	for d, p := range pos {
		i = i*res.Shape[d] + p
	}
	return res.Values[i]
}

func TestExecuteFull(t *testing.T) {
	ds := demoDataset(t)
	res, err := query.Execute(context.Background(), ds, query.Query{
		Variable: "temperature",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"time", "lat", "lon"}, res.Dims)
	assert.Equal(t, []int{4, 3, 5}, res.Shape)
	assert.Equal(t, []int{0, 0, 0}, res.Offset)
	assert.Equal(t, 60, res.Elements())
	require.Len(t, res.Values, 60)

	assert.Equal(t, gridtest.TempValue(0, 0, 0), at(res, 0, 0, 0))
	assert.Equal(t, gridtest.TempValue(1, 2, 4), at(res, 1, 2, 4))
	assert.Equal(t, gridtest.TempValue(3, 1, 2), at(res, 3, 1, 2))

	// Chunk {1,1,1} is absent from the store: times 2-3, the last
	// latitude row, the last two longitude columns.
	assert.Equal(t, float64(gridtest.FillValue), at(res, 2, 2, 3))
	assert.Equal(t, float64(gridtest.FillValue), at(res, 3, 2, 4))
	assert.Equal(t, gridtest.TempValue(3, 2, 2), at(res, 3, 2, 2))

	assert.Equal(t, gridtest.TimeValues, res.Coords["time"])
	assert.Equal(t, gridtest.LatValues, res.Coords["lat"])
	assert.Equal(t, gridtest.LonValues, res.Coords["lon"])
}

func TestExecuteIndexRanges(t *testing.T) {
	ds := demoDataset(t)
	// The box crosses chunk boundaries on every axis.
	res, err := query.Execute(context.Background(), ds, query.Query{
		Variable: "temperature",
		Index: map[string]query.Range{
			"time": {Start: 1, Stop: 3},
			"lat":  {Start: 1, Stop: 3},
			"lon":  {Start: 2, Stop: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 3}, res.Shape)
	assert.Equal(t, []int{1, 1, 2}, res.Offset)
	for dt := 0; dt < 2; dt++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 3; dx++ {
				gt, gy, gx := 1+dt, 1+dy, 2+dx
				want := gridtest.TempValue(gt, gy, gx)
				if gt >= 2 && gy == 2 && gx >= 3 {
					want = gridtest.FillValue
				}
				assert.Equal(t, want, at(res, dt, dy, dx),
					"value at [%v %v %v]", gt, gy, gx)
			}
		}
	}
	assert.Equal(t, []float64{20, 30}, res.Coords["lat"])
	assert.Equal(t, []float64{120, 130, 140}, res.Coords["lon"])
}

func TestExecuteCoordBounds(t *testing.T) {
	ds := demoDataset(t)
	res, err := query.Execute(context.Background(), ds, query.Query{
		Variable: "temperature",
		Coord: map[string]query.Bounds{
			"lat": {Min: 15, Max: 30},
			"lon": {Min: 100, Max: 125},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{4, 2, 3}, res.Shape)
	assert.Equal(t, []int{0, 1, 0}, res.Offset)
	assert.Equal(t, gridtest.TempValue(0, 1, 0), at(res, 0, 0, 0))
	assert.Equal(t, gridtest.TempValue(3, 2, 2), at(res, 3, 1, 2))
}

func TestExecuteTimeBounds(t *testing.T) {
	ds := demoDataset(t)
	start := time.Date(2021, 1, 1, 6, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	res, err := query.Execute(context.Background(), ds, query.Query{
		Variable: "temperature",
		Start:    &start,
		End:      &end,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 5}, res.Shape)
	assert.Equal(t, []int{1, 0, 0}, res.Offset)
	assert.Equal(t, []float64{6, 12}, res.Coords["time"])
	assert.Equal(t, gridtest.TempValue(1, 0, 0), at(res, 0, 0, 0))
	assert.Equal(t, gridtest.TempValue(2, 1, 1), at(res, 1, 1, 1))
}

func TestExecuteEmptySelection(t *testing.T) {
	ds := demoDataset(t)
	res, err := query.Execute(context.Background(), ds, query.Query{
		Variable: "temperature",
		Coord: map[string]query.Bounds{
			"lat": {Min: 100, Max: 200},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0, 5}, res.Shape)
	assert.Equal(t, 0, res.Elements())
	assert.Empty(t, res.Values)
	assert.Empty(t, res.Coords["lat"])
}

func TestExecuteTooLarge(t *testing.T) {
	ds := demoDataset(t)
	_, err := query.Execute(context.Background(), ds, query.Query{
		Variable:    "temperature",
		MaxElements: 10,
	})
	assert.Equal(t, query.ErrTooLarge{Elements: 60, Limit: 10}, err)
}

func TestExecuteBadSelection(t *testing.T) {
	ds := demoDataset(t)
	ctx := context.Background()

	_, err := query.Execute(ctx, ds, query.Query{
		Variable: "temperature",
		Index:    map[string]query.Range{"depth": {Start: 0, Stop: 1}},
	})
	var bad query.ErrBadSelection
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "depth", bad.Dim)

	_, err = query.Execute(ctx, ds, query.Query{
		Variable: "temperature",
		Index:    map[string]query.Range{"lat": {Start: 2, Stop: 1}},
	})
	assert.ErrorAs(t, err, &bad)

	_, err = query.Execute(ctx, ds, query.Query{
		Variable: "lat",
		Start:    &time.Time{},
	})
	assert.ErrorAs(t, err, &bad)
}

func TestExecuteNoSuchVariable(t *testing.T) {
	ds := demoDataset(t)
	_, err := query.Execute(context.Background(), ds, query.Query{
		Variable: "pressure",
	})
	assert.Equal(t, grid.ErrNoSuchVariable{Dataset: "demo", Name: "pressure"}, err)
}

func TestExecuteIndexClipped(t *testing.T) {
	ds := demoDataset(t)
	res, err := query.Execute(context.Background(), ds, query.Query{
		Variable: "temperature",
		Index: map[string]query.Range{
			"lon": {Start: 3, Stop: 99},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 2}, res.Shape)
	assert.Equal(t, gridtest.TempValue(0, 0, 3), at(res, 0, 0, 0))
}

func TestCoordRange(t *testing.T) {
	asc := []float64{0, 10, 20, 30, 40}

	r, err := query.CoordRange(asc, query.Bounds{Min: 10, Max: 30})
	require.NoError(t, err)
	assert.Equal(t, query.Range{Start: 1, Stop: 4}, r)

	r, err = query.CoordRange(asc, query.Bounds{Min: 5, Max: 25})
	require.NoError(t, err)
	assert.Equal(t, query.Range{Start: 1, Stop: 3}, r)

	r, err = query.CoordRange(asc, query.Bounds{Min: 100, Max: 200})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())

	desc := []float64{40, 30, 20, 10, 0}
	r, err = query.CoordRange(desc, query.Bounds{Min: 10, Max: 30})
	require.NoError(t, err)
	assert.Equal(t, query.Range{Start: 1, Stop: 4}, r)

	r, err = query.CoordRange(desc, query.Bounds{Min: 35, Max: 100})
	require.NoError(t, err)
	assert.Equal(t, query.Range{Start: 0, Stop: 1}, r)

	_, err = query.CoordRange([]float64{1, 5, 3}, query.Bounds{Min: 0, Max: 9})
	assert.Error(t, err)
}

func TestTimeRange(t *testing.T) {
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		base,
		base.Add(6 * time.Hour),
		base.Add(12 * time.Hour),
		base.Add(18 * time.Hour),
	}

	assert.Equal(t, query.Range{Start: 0, Stop: 4},
		query.TimeRange(stamps, nil, nil))

	start := base.Add(3 * time.Hour)
	end := base.Add(12 * time.Hour)
	assert.Equal(t, query.Range{Start: 1, Stop: 3},
		query.TimeRange(stamps, &start, &end))

	late := base.Add(48 * time.Hour)
	assert.Equal(t, 0, query.TimeRange(stamps, &late, nil).Len())
}
