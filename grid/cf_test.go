// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package grid_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/grid/gridtest"
)

func TestAxisClassification(t *testing.T) {
	ds := openDemo(t, true)

	axes := map[string]grid.Axis{
		"time":        grid.AxisTime,
		"lat":         grid.AxisY,
		"lon":         grid.AxisX,
		"temperature": grid.AxisNone,
	}
	for name, want := range axes {
		v, err := ds.Variable(name)
		require.NoError(t, err)
		assert.Equal(t, want, v.Axis(), "axis of %v", name)
	}
}

func TestAxisCoordinate(t *testing.T) {
	ds := openDemo(t, true)
	temp, err := ds.Variable("temperature")
	require.NoError(t, err)

	lat := temp.AxisCoordinate(grid.AxisY)
	require.NotNil(t, lat)
	assert.Equal(t, "lat", lat.Name())

	tc := temp.AxisCoordinate(grid.AxisTime)
	require.NotNil(t, tc)
	assert.Equal(t, "time", tc.Name())

	assert.Nil(t, temp.AxisCoordinate(grid.AxisZ))
}

func TestParseTimeUnits(t *testing.T) {
	unit, epoch, err := grid.ParseTimeUnits("seconds since 1970-01-01 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Second, unit)
	assert.Equal(t, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), epoch)

	unit, epoch, err = grid.ParseTimeUnits("hours since 2021-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, unit)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), epoch)

	unit, _, err = grid.ParseTimeUnits("days since 2000-1-1")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, unit)

	_, _, err = grid.ParseTimeUnits("degrees_north")
	assert.Error(t, err)
	_, _, err = grid.ParseTimeUnits("months since 2000-01-01")
	assert.Error(t, err)
	_, _, err = grid.ParseTimeUnits("seconds since someday")
	assert.Error(t, err)
}

func TestTimeValues(t *testing.T) {
	ds := openDemo(t, true)
	tc, err := ds.Variable("time")
	require.NoError(t, err)

	stamps, err := tc.TimeValues(context.Background())
	require.NoError(t, err)
	require.Len(t, stamps, len(gridtest.TimeValues))
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, hours := range gridtest.TimeValues {
		assert.Equal(t, base.Add(time.Duration(hours)*time.Hour), stamps[i])
	}
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "T", grid.AxisTime.String())
	assert.Equal(t, "X", grid.AxisX.String())
	assert.Equal(t, "", grid.AxisNone.String())
}
