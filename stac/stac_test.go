// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package stac_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpub/gridpub/stac"
)

func TestItemTimes(t *testing.T) {
	item := stac.Item{
		Properties: map[string]interface{}{
			"datetime": "2021-06-01T12:00:00Z",
		},
	}
	times, err := item.Times()
	require.NoError(t, err)
	require.NotNil(t, times.Datetime)
	assert.Equal(t, time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC), *times.Datetime)
	assert.Nil(t, times.Start)

	item.Properties = map[string]interface{}{
		"datetime":       nil,
		"start_datetime": "2021-01-01T00:00:00Z",
		"end_datetime":   "2021-12-31T00:00:00Z",
	}
	times, err = item.Times()
	require.NoError(t, err)
	assert.Nil(t, times.Datetime)
	require.NotNil(t, times.Start)
	require.NotNil(t, times.End)
	assert.True(t, times.Start.Before(*times.End))

	item.Properties = map[string]interface{}{"other": "stuff"}
	times, err = item.Times()
	require.NoError(t, err)
	assert.Equal(t, stac.ItemTimes{}, times)

	item.Properties = map[string]interface{}{"datetime": "yesterday"}
	_, err = item.Times()
	assert.Error(t, err)
}

func TestBboxIntersects(t *testing.T) {
	a := []float64{0, 0, 10, 10}
	assert.True(t, stac.BboxIntersects(a, []float64{5, 5, 15, 15}))
	assert.True(t, stac.BboxIntersects(a, []float64{10, 10, 20, 20}), "touching boxes intersect")
	assert.True(t, stac.BboxIntersects(a, []float64{2, 2, 3, 3}), "containment intersects")
	assert.False(t, stac.BboxIntersects(a, []float64{11, 0, 20, 10}))
	assert.False(t, stac.BboxIntersects(a, []float64{0, 11, 10, 20}))
	assert.False(t, stac.BboxIntersects(a, nil))
}

func TestTimesOverlap(t *testing.T) {
	stamp := func(day int) *time.Time {
		s := time.Date(2021, 6, day, 0, 0, 0, 0, time.UTC)
		return &s
	}
	point := stac.ItemTimes{Datetime: stamp(10)}
	interval := stac.ItemTimes{Start: stamp(5), End: stamp(15)}

	assert.True(t, stac.TimesOverlap(point, stamp(1), stamp(20)))
	assert.True(t, stac.TimesOverlap(point, nil, nil))
	assert.False(t, stac.TimesOverlap(point, stamp(11), nil))
	assert.False(t, stac.TimesOverlap(point, nil, stamp(9)))

	assert.True(t, stac.TimesOverlap(interval, stamp(14), stamp(20)))
	assert.True(t, stac.TimesOverlap(interval, stamp(1), stamp(6)))
	assert.False(t, stac.TimesOverlap(interval, stamp(16), nil))

	assert.True(t, stac.TimesOverlap(stac.ItemTimes{}, stamp(1), stamp(2)))
}

func TestItemJSONShape(t *testing.T) {
	item := stac.Item{
		Type:        "Feature",
		StacVersion: stac.Version,
		ID:          "x",
		Properties:  map[string]interface{}{"datetime": nil},
		Assets:      map[string]stac.Asset{},
	}
	data, err := json.Marshal(item)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Feature", doc["type"])
	assert.Equal(t, stac.Version, doc["stac_version"])
	assert.Contains(t, doc, "geometry", "null geometry must still serialize")
}

func TestSearchContext(t *testing.T) {
	// The memory index ignores its context, but must accept one
	// that is already canceled without deadlocking.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx := stac.NewMemoryIndex()
	_, err := idx.Items(ctx, stac.Search{})
	assert.NoError(t, err)
}
