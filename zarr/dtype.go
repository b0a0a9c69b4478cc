// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package zarr

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Dtype is a parsed numpy typestr, the "dtype" field of an array's
// metadata.  The string form has three parts: one character for byte
// order ("<" little endian, ">" big endian, "|" not relevant), one
// character for the basic type ("b" boolean, "i" integer, "u" unsigned,
// "f" float, "c" complex, "m" timedelta, "M" datetime, "S" string, "U"
// unicode, "V" void), and the element size in bytes.  Datetime and
// timedelta types carry a trailing unit like "[ns]".
type Dtype struct {
	ByteOrder ByteOrder
	BasicType BasicType
	ByteSize  int
	Units     string
}

var (
	_ json.Unmarshaler = (*Dtype)(nil)
	_ json.Marshaler   = (*Dtype)(nil)
)

// ParseDtype parses the string form of a data type.
func ParseDtype(s string) (dt Dtype, err error) {
	// Some writers HTML-escape the angle brackets when serializing
	// JSON; undo that first.
	s = strings.Replace(s, "&lt;", "<", 1)
	s = strings.Replace(s, "&gt;", ">", 1)

	if len(s) < 3 {
		return dt, fmt.Errorf("invalid dtype: %q is too short", s)
	}

	dt.ByteOrder, err = ParseByteOrder(rune(s[0]))
	if err != nil {
		return dt, err
	}
	dt.BasicType, err = ParseBasicType(rune(s[1]))
	if err != nil {
		return dt, err
	}
	s = s[2:]

	sizeStr := s
	if i := strings.IndexByte(s, '['); i >= 0 {
		sizeStr = s[:i]
		dt.Units = s[i:]
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return dt, fmt.Errorf("invalid dtype size in %q", s)
	}
	dt.ByteSize = size

	return dt, nil
}

func (dt Dtype) String() string {
	s := fmt.Sprintf("%c%c%d", dt.ByteOrder, dt.BasicType, dt.ByteSize)
	if dt.Units != "" {
		s += dt.Units
	}
	return s
}

// Order returns the binary byte order for decoding elements.  "Not
// relevant" types (single-byte elements) decode as little endian.
func (dt Dtype) Order() binary.ByteOrder {
	if dt.ByteOrder == BOBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Numeric reports whether elements of this type can be decoded into
// float64 values.
func (dt Dtype) Numeric() bool {
	switch dt.BasicType {
	case BTBoolean, BTInteger, BTUnsigned, BTFloatingPoint,
		BTTimedelta, BTDatetime:
		return true
	}
	return false
}

func (dt Dtype) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

func (dt *Dtype) UnmarshalJSON(d []byte) error {
	var s string
	if err := json.Unmarshal(d, &s); err != nil {
		return err
	}
	t, err := ParseDtype(s)
	if err != nil {
		return err
	}
	*dt = t
	return nil
}

// ByteOrder is the first character of a typestr.
type ByteOrder rune

const (
	BONotRelevant  ByteOrder = '|'
	BOLittleEndian ByteOrder = '<'
	BOBigEndian    ByteOrder = '>'
)

var byteOrders = map[ByteOrder]struct{}{
	BONotRelevant:  {},
	BOLittleEndian: {},
	BOBigEndian:    {},
}

// ParseByteOrder validates a byte order character.
func ParseByteOrder(r rune) (ByteOrder, error) {
	o := ByteOrder(r)
	if _, ok := byteOrders[o]; !ok {
		return o, fmt.Errorf("unsupported byte order %q", r)
	}
	return o, nil
}

// BasicType is the second character of a typestr.
type BasicType rune

const (
	BTBoolean       BasicType = 'b'
	BTInteger       BasicType = 'i'
	BTUnsigned      BasicType = 'u'
	BTFloatingPoint BasicType = 'f'
	BTComplex       BasicType = 'c'
	BTTimedelta     BasicType = 'm'
	BTDatetime      BasicType = 'M'
	BTString        BasicType = 'S'
	BTUnicode       BasicType = 'U'
	BTOther         BasicType = 'V'
)

var basicTypes = map[BasicType]string{
	BTBoolean:       "bool",
	BTInteger:       "int",
	BTUnsigned:      "uint",
	BTFloatingPoint: "float",
	BTComplex:       "complex",
	BTTimedelta:     "timedelta",
	BTDatetime:      "datetime",
	BTString:        "string",
	BTUnicode:       "unicode",
	BTOther:         "other",
}

// ParseBasicType validates a basic type character.
func ParseBasicType(r rune) (BasicType, error) {
	t := BasicType(r)
	if _, ok := basicTypes[t]; !ok {
		return t, fmt.Errorf("unsupported basic type %q", r)
	}
	return t, nil
}

// Human returns a human-readable name for the basic type.
func (bt BasicType) Human() string {
	return basicTypes[bt]
}
