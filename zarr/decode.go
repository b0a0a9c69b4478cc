// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package zarr

import (
	"encoding/json"
	"fmt"
	"math"
)

// DecodeValues decodes a decompressed chunk body into float64 values.
// Booleans decode as 0 or 1; integer, unsigned, float, datetime, and
// timedelta types convert to float64.  The byte order of the dtype is
// honored.  Non-numeric dtypes produce ErrUnsupportedDtype.
func DecodeValues(dt Dtype, data []byte) ([]float64, error) {
	if !dt.Numeric() {
		return nil, ErrUnsupportedDtype{Dtype: dt.String()}
	}
	if dt.ByteSize <= 0 || len(data)%dt.ByteSize != 0 {
		return nil, fmt.Errorf("chunk body of %v bytes is not a multiple of element size %v",
			len(data), dt.ByteSize)
	}
	order := dt.Order()
	count := len(data) / dt.ByteSize
	values := make([]float64, count)

	for i := 0; i < count; i++ {
		elem := data[i*dt.ByteSize : (i+1)*dt.ByteSize]
		switch dt.BasicType {
		case BTBoolean:
			if elem[0] != 0 {
				values[i] = 1
			}
		case BTInteger, BTTimedelta, BTDatetime:
			switch dt.ByteSize {
			case 1:
				values[i] = float64(int8(elem[0]))
			case 2:
				values[i] = float64(int16(order.Uint16(elem)))
			case 4:
				values[i] = float64(int32(order.Uint32(elem)))
			case 8:
				values[i] = float64(int64(order.Uint64(elem)))
			default:
				return nil, ErrUnsupportedDtype{Dtype: dt.String()}
			}
		case BTUnsigned:
			switch dt.ByteSize {
			case 1:
				values[i] = float64(elem[0])
			case 2:
				values[i] = float64(order.Uint16(elem))
			case 4:
				values[i] = float64(order.Uint32(elem))
			case 8:
				values[i] = float64(order.Uint64(elem))
			default:
				return nil, ErrUnsupportedDtype{Dtype: dt.String()}
			}
		case BTFloatingPoint:
			switch dt.ByteSize {
			case 4:
				values[i] = float64(math.Float32frombits(order.Uint32(elem)))
			case 8:
				values[i] = math.Float64frombits(order.Uint64(elem))
			default:
				return nil, ErrUnsupportedDtype{Dtype: dt.String()}
			}
		}
	}
	return values, nil
}

// FillValueFloat interprets an array's fill_value metadata as a
// float64.  A null fill value, and any fill value that cannot be
// interpreted, decode as NaN.
func FillValueFloat(v interface{}) float64 {
	switch fill := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return fill
	case int:
		return float64(fill)
	case json.Number:
		f, err := fill.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case bool:
		if fill {
			return 1
		}
		return 0
	case string:
		switch fill {
		case "NaN":
			return math.NaN()
		case "Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
	}
	return math.NaN()
}
