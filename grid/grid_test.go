// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package grid_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/grid/gridtest"
	"github.com/gridpub/gridpub/storage"
	"github.com/gridpub/gridpub/storage/memory"
)

func openDemo(t *testing.T, consolidated bool) *grid.Dataset {
	ds, err := grid.Open(context.Background(), gridtest.DemoStore(consolidated), "demo")
	require.NoError(t, err)
	return ds
}

func TestOpenConsolidated(t *testing.T) {
	ds := openDemo(t, true)
	assert.Equal(t, "demo", ds.Name())
	assert.Equal(t, []string{"lat", "lon", "temperature", "time"},
		ds.VariableNames())
	assert.Equal(t, "gridtest demo dataset", ds.Attrs().StringAttr("title"))
}

func TestOpenWalking(t *testing.T) {
	ds := openDemo(t, false)
	assert.Equal(t, []string{"lat", "lon", "temperature", "time"},
		ds.VariableNames())
	assert.Equal(t, "gridtest demo dataset", ds.Attrs().StringAttr("title"))
}

func TestOpenNotZarr(t *testing.T) {
	_, err := grid.Open(context.Background(), memory.New(), "empty")
	assert.Equal(t, grid.ErrNotZarr{Name: "empty"}, err)
}

func TestVariableLookup(t *testing.T) {
	ds := openDemo(t, true)

	temp, err := ds.Variable("temperature")
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "lat", "lon"}, temp.Dims())
	assert.Equal(t, []int{4, 3, 5}, temp.Meta().Shape)
	assert.Equal(t, []int{2, 2, 3}, temp.Meta().Chunks)
	assert.Equal(t, "K", temp.Attrs().StringAttr("units"))

	_, err = ds.Variable("pressure")
	assert.Equal(t, grid.ErrNoSuchVariable{Dataset: "demo", Name: "pressure"}, err)
}

func TestCoordinate(t *testing.T) {
	ds := openDemo(t, true)

	lat := ds.Coordinate("lat")
	require.NotNil(t, lat)
	assert.Equal(t, "lat", lat.Name())

	// A data variable is not a coordinate for its own dimensions.
	assert.Nil(t, ds.Coordinate("temperature"))
	assert.Nil(t, ds.Coordinate("nonexistent"))
}

func TestValues(t *testing.T) {
	ds := openDemo(t, true)
	ctx := context.Background()

	lon, err := ds.Variable("lon")
	require.NoError(t, err)
	values, err := lon.Values(ctx)
	require.NoError(t, err)
	assert.Equal(t, gridtest.LonValues, values)

	temp, err := ds.Variable("temperature")
	require.NoError(t, err)
	_, err = temp.Values(ctx)
	assert.Error(t, err, "Values on a 3-d variable should fail")
}

func TestChunk(t *testing.T) {
	ds := openDemo(t, true)
	ctx := context.Background()
	temp, err := ds.Variable("temperature")
	require.NoError(t, err)

	values, err := temp.Chunk(ctx, []int{0, 0, 0})
	require.NoError(t, err)
	require.Len(t, values, 12)
	// C order within the chunk: t varies slowest, x fastest.
	assert.Equal(t, gridtest.TempValue(0, 0, 0), values[0])
	assert.Equal(t, gridtest.TempValue(0, 0, 2), values[2])
	assert.Equal(t, gridtest.TempValue(0, 1, 0), values[3])
	assert.Equal(t, gridtest.TempValue(1, 1, 2), values[11])
}

func TestChunkMissing(t *testing.T) {
	ds := openDemo(t, true)
	temp, err := ds.Variable("temperature")
	require.NoError(t, err)

	values, err := temp.Chunk(context.Background(), gridtest.MissingChunk)
	require.NoError(t, err)
	require.Len(t, values, 12)
	for _, v := range values {
		assert.Equal(t, float64(gridtest.FillValue), v)
	}
}

func TestChunkEdgePadding(t *testing.T) {
	ds := openDemo(t, true)
	temp, err := ds.Variable("temperature")
	require.NoError(t, err)

	// The last lon chunk covers columns 3..5 but the shape stops at
	// 5; the padding positions hold NaN in the fixture.
	values, err := temp.Chunk(context.Background(), []int{0, 0, 1})
	require.NoError(t, err)
	require.Len(t, values, 12)
	assert.Equal(t, gridtest.TempValue(0, 0, 3), values[0])
	assert.Equal(t, gridtest.TempValue(0, 0, 4), values[1])
	assert.True(t, math.IsNaN(values[2]))
}

func TestChunkBadIndices(t *testing.T) {
	ds := openDemo(t, true)
	temp, err := ds.Variable("temperature")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = temp.Chunk(ctx, []int{9, 0, 0})
	assert.Error(t, err)
	_, err = temp.Chunk(ctx, []int{0, 0})
	assert.Error(t, err)
}

func TestChunkRaw(t *testing.T) {
	ds := openDemo(t, true)
	temp, err := ds.Variable("temperature")
	require.NoError(t, err)
	ctx := context.Background()

	data, err := temp.ChunkRaw(ctx, "0.0.0")
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = temp.ChunkRaw(ctx, "1.1.1")
	assert.True(t, storage.IsNotFound(err))

	_, err = temp.ChunkRaw(ctx, "0.0")
	assert.Error(t, err)
	_, err = temp.ChunkRaw(ctx, "../escape")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	ds := openDemo(t, true)
	r := grid.NewRegistry()
	assert.Empty(t, r.DatasetNames())

	r.Add(ds)
	assert.Equal(t, []string{"demo"}, r.DatasetNames())

	got, err := r.Dataset("demo")
	require.NoError(t, err)
	assert.Same(t, ds, got)

	_, err = r.Dataset("other")
	assert.Equal(t, grid.ErrNoSuchDataset{Name: "other"}, err)
}

func TestOpenMounts(t *testing.T) {
	base := memory.New()
	w := base.(storage.Writer)
	ctx := context.Background()

	demo := gridtest.DemoStore(true)
	keys, err := demo.List(ctx, "")
	require.NoError(t, err)
	for _, key := range keys {
		data, err := demo.Get(ctx, key)
		require.NoError(t, err)
		require.NoError(t, w.Put(ctx, "archive/demo/"+key, data))
	}

	r, err := grid.OpenMounts(ctx, base, []grid.Mount{
		{Name: "demo", Prefix: "archive/demo"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, r.DatasetNames())

	_, err = grid.OpenMounts(ctx, base, []grid.Mount{
		{Name: "demo", Prefix: "archive/demo"},
		{Name: "broken", Prefix: "no/such/prefix"},
	})
	assert.Error(t, err)
}
