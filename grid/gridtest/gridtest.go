// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package gridtest builds small Zarr hierarchies in memory for tests.
// The demo dataset is a three-dimensional temperature field with CF
// coordinates, sized so that every interesting case exists: interior
// chunks, edge-truncated chunks, a chunk that was never written, and
// both compressed and uncompressed arrays.
package gridtest

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/gridpub/gridpub/storage"
	"github.com/gridpub/gridpub/storage/memory"
	"github.com/gridpub/gridpub/zarr"
)

// Demo dataset geometry, exported so tests can assert against it.
var (
	// TimeValues is hours since 2021-01-01.
	TimeValues = []float64{0, 6, 12, 18}
	LatValues  = []float64{10, 20, 30}
	LonValues  = []float64{100, 110, 120, 130, 140}
)

// TempValue is the temperature at a grid point; the encoding is chosen
// so tests can compute expected query results without fixtures.
func TempValue(t, y, x int) float64 {
	return float64(t*100 + y*10 + x)
}

// MissingChunk identifies the temperature chunk that is deliberately
// absent from the demo store; reads of it see the fill value.
var MissingChunk = []int{1, 1, 1}

// FillValue is the demo temperature fill value.
const FillValue = -9999.0

// DemoStore builds the demo dataset in a fresh in-memory store.  The
// hierarchy has consolidated metadata; if consolidated is false the
// ".zmetadata" document is omitted, exercising the walking loader.
func DemoStore(consolidated bool) storage.Store {
	store := memory.New()
	w := store.(storage.Writer)
	ctx := context.Background()

	putJSON := func(key string, v interface{}) {
		data, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		if err := w.Put(ctx, key, data); err != nil {
			panic(err)
		}
	}

	group := zarr.GroupMeta{ZarrFormat: zarr.Format}
	rootAttrs := zarr.Attrs{
		"title":       "gridtest demo dataset",
		"institution": "gridpub",
	}

	timeMeta := coordMeta(len(TimeValues))
	timeAttrs := zarr.Attrs{
		zarr.DimensionAttr: []interface{}{"time"},
		"standard_name":    "time",
		"units":            "hours since 2021-01-01",
	}
	latMeta := coordMeta(len(LatValues))
	latAttrs := zarr.Attrs{
		zarr.DimensionAttr: []interface{}{"lat"},
		"standard_name":    "latitude",
		"units":            "degrees_north",
	}
	lonMeta := coordMeta(len(LonValues))
	lonAttrs := zarr.Attrs{
		zarr.DimensionAttr: []interface{}{"lon"},
		"standard_name":    "longitude",
		"units":            "degrees_east",
	}

	tempMeta := zarr.ArrayMeta{
		ZarrFormat: zarr.Format,
		Shape:      []int{len(TimeValues), len(LatValues), len(LonValues)},
		Chunks:     []int{2, 2, 3},
		Dtype:      mustDtype("<f8"),
		Compressor: &zarr.CompressorMeta{ID: "zlib", Level: 1},
		FillValue:  FillValue,
		Order:      "C",
	}
	tempAttrs := zarr.Attrs{
		zarr.DimensionAttr: []interface{}{"time", "lat", "lon"},
		"standard_name":    "air_temperature",
		"units":            "K",
	}

	putJSON(zarr.GroupMetaKey, group)
	putJSON(zarr.AttrsKey, rootAttrs)
	putJSON("time/"+zarr.ArrayMetaKey, timeMeta)
	putJSON("time/"+zarr.AttrsKey, timeAttrs)
	putJSON("lat/"+zarr.ArrayMetaKey, latMeta)
	putJSON("lat/"+zarr.AttrsKey, latAttrs)
	putJSON("lon/"+zarr.ArrayMetaKey, lonMeta)
	putJSON("lon/"+zarr.AttrsKey, lonAttrs)
	putJSON("temperature/"+zarr.ArrayMetaKey, tempMeta)
	putJSON("temperature/"+zarr.AttrsKey, tempAttrs)

	if consolidated {
		meta := map[string]interface{}{
			zarr.GroupMetaKey:                  group,
			zarr.AttrsKey:                      rootAttrs,
			"time/" + zarr.ArrayMetaKey:        timeMeta,
			"time/" + zarr.AttrsKey:            timeAttrs,
			"lat/" + zarr.ArrayMetaKey:         latMeta,
			"lat/" + zarr.AttrsKey:             latAttrs,
			"lon/" + zarr.ArrayMetaKey:         lonMeta,
			"lon/" + zarr.AttrsKey:             lonAttrs,
			"temperature/" + zarr.ArrayMetaKey: tempMeta,
			"temperature/" + zarr.AttrsKey:     tempAttrs,
		}
		putJSON(zarr.ConsolidatedKey, map[string]interface{}{
			"zarr_consolidated_format": zarr.ConsolidatedVersion,
			"metadata":                 meta,
		})
	}

	putCoord := func(name string, values []float64) {
		if err := w.Put(ctx, name+"/0", EncodeFloat64(values)); err != nil {
			panic(err)
		}
	}
	putCoord("time", TimeValues)
	putCoord("lat", LatValues)
	putCoord("lon", LonValues)

	writeTempChunks(ctx, w, &tempMeta)

	return store
}

func writeTempChunks(ctx context.Context, w storage.Writer, meta *zarr.ArrayMeta) {
	grid := meta.GridShape()
	for ct := 0; ct < grid[0]; ct++ {
		for cy := 0; cy < grid[1]; cy++ {
			for cx := 0; cx < grid[2]; cx++ {
				indices := []int{ct, cy, cx}
				if equalInts(indices, MissingChunk) {
					continue
				}
				values := make([]float64, meta.ChunkElements())
				i := 0
				for t := 0; t < meta.Chunks[0]; t++ {
					for y := 0; y < meta.Chunks[1]; y++ {
						for x := 0; x < meta.Chunks[2]; x++ {
							gt := ct*meta.Chunks[0] + t
							gy := cy*meta.Chunks[1] + y
							gx := cx*meta.Chunks[2] + x
							if gt < meta.Shape[0] && gy < meta.Shape[1] && gx < meta.Shape[2] {
								values[i] = TempValue(gt, gy, gx)
							} else {
								values[i] = math.NaN()
							}
							i++
						}
					}
				}
				key := "temperature/" + zarr.ChunkKey(indices, meta.Separator())
				if err := w.Put(ctx, key, compressZlib(EncodeFloat64(values))); err != nil {
					panic(err)
				}
			}
		}
	}
}

func coordMeta(length int) zarr.ArrayMeta {
	return zarr.ArrayMeta{
		ZarrFormat: zarr.Format,
		Shape:      []int{length},
		Chunks:     []int{length},
		Dtype:      mustDtype("<f8"),
		Compressor: nil,
		FillValue:  nil,
		Order:      "C",
	}
}

// EncodeFloat64 encodes values as little-endian float64, the demo
// dataset's dtype.
func EncodeFloat64(values []float64) []byte {
	data := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	return data
}

func compressZlib(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func mustDtype(s string) zarr.Dtype {
	dt, err := zarr.ParseDtype(s)
	if err != nil {
		panic(fmt.Sprintf("bad dtype %q: %v", s, err))
	}
	return dt
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
