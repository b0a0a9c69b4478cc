// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package grid

// CF convention helpers.  The CF metadata conventions mark coordinate
// variables with "standard_name", "units", and "axis" attributes;
// these functions classify axes and translate CF time encodings so
// value-space queries ("the cell nearest 41.5N") can be turned into
// index-space ones.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gridpub/gridpub/zarr"
)

// Axis classifies a coordinate variable.
type Axis int

const (
	// AxisNone marks variables that are not a recognized axis.
	AxisNone Axis = iota
	// AxisX is longitude or a projected x coordinate.
	AxisX
	// AxisY is latitude or a projected y coordinate.
	AxisY
	// AxisZ is height or depth.
	AxisZ
	// AxisTime is a temporal coordinate.
	AxisTime
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	case AxisTime:
		return "T"
	}
	return ""
}

// Axis classifies the variable from its CF attributes.  The explicit
// "axis" attribute wins; then "standard_name"; then "units".
func (v *Variable) Axis() Axis {
	switch strings.ToUpper(v.attrs.StringAttr("axis")) {
	case "X":
		return AxisX
	case "Y":
		return AxisY
	case "Z":
		return AxisZ
	case "T":
		return AxisTime
	}

	switch v.attrs.StringAttr("standard_name") {
	case "longitude", "projection_x_coordinate", "grid_longitude":
		return AxisX
	case "latitude", "projection_y_coordinate", "grid_latitude":
		return AxisY
	case "height", "depth", "altitude", "air_pressure":
		return AxisZ
	case "time":
		return AxisTime
	}

	units := v.attrs.StringAttr("units")
	switch units {
	case "degrees_east", "degree_east", "degrees_E":
		return AxisX
	case "degrees_north", "degree_north", "degrees_N":
		return AxisY
	}
	if _, _, err := ParseTimeUnits(units); err == nil {
		return AxisTime
	}

	// The variable's own dtype can mark time: xarray writes
	// datetime64 coordinates with a datetime dtype.
	if v.meta.Dtype.BasicType == zarr.BTDatetime {
		return AxisTime
	}

	return AxisNone
}

// AxisCoordinate finds the coordinate variable for the given axis
// among a variable's own dimensions.  Returns nil if none matches.
func (v *Variable) AxisCoordinate(axis Axis) *Variable {
	for _, dim := range v.dims {
		coord := v.dataset.Coordinate(dim)
		if coord != nil && coord.Axis() == axis {
			return coord
		}
	}
	return nil
}

// timeUnitsByName maps the CF unit word to its length.  CF also allows
// calendar-dependent units ("months", "years") which have no fixed
// length; those are rejected.
var timeUnitsByName = map[string]time.Duration{
	"microseconds": time.Microsecond,
	"milliseconds": time.Millisecond,
	"seconds":      time.Second,
	"second":       time.Second,
	"sec":          time.Second,
	"s":            time.Second,
	"minutes":      time.Minute,
	"minute":       time.Minute,
	"min":          time.Minute,
	"hours":        time.Hour,
	"hour":         time.Hour,
	"hr":           time.Hour,
	"h":            time.Hour,
	"days":         24 * time.Hour,
	"day":          24 * time.Hour,
	"d":            24 * time.Hour,
}

// epochLayouts lists the timestamp layouts seen in the wild in CF
// units strings.
var epochLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

// ParseTimeUnits parses a CF time units string like "seconds since
// 1970-01-01 00:00:00" into a unit length and an epoch.
func ParseTimeUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(units, " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("not a time units string: %q", units)
	}

	unit, known := timeUnitsByName[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !known {
		return 0, time.Time{}, fmt.Errorf("unsupported time unit %q", parts[0])
	}

	stamp := strings.TrimSpace(parts[1])
	for _, layout := range epochLayouts {
		if epoch, err := time.Parse(layout, stamp); err == nil {
			return unit, epoch.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unparseable epoch %q", stamp)
}

// TimeValues converts a time coordinate's raw values into timestamps
// using its CF units attribute.  Coordinates stored as datetime64
// without units decode as nanoseconds since the Unix epoch, which is
// the numpy default.
func (v *Variable) TimeValues(ctx context.Context) ([]time.Time, error) {
	values, err := v.Values(ctx)
	if err != nil {
		return nil, err
	}

	unit := time.Nanosecond
	epoch := time.Unix(0, 0).UTC()
	if units := v.attrs.StringAttr("units"); units != "" {
		unit, epoch, err = ParseTimeUnits(units)
		if err != nil {
			return nil, err
		}
	}

	stamps := make([]time.Time, len(values))
	for i, value := range values {
		stamps[i] = epoch.Add(time.Duration(value * float64(unit)))
	}
	return stamps, nil
}
