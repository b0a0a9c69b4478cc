// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package zarr implements the parts of the Zarr v2 storage format that
// gridpub needs to read gridded datasets.  A Zarr hierarchy is a set of
// keys in some object store: JSON metadata documents (".zgroup",
// ".zarray", ".zattrs", and the consolidated ".zmetadata") plus
// compressed binary chunk objects named by their grid indices, like
// "temperature/3.0.1".
//
// This package understands the metadata documents, the numpy typestr
// data type encoding, chunk key arithmetic, and chunk decompression and
// decoding.  It does not write data; gridpub is a read-only publisher.
package zarr

import (
	"encoding/json"
	"fmt"
)

// Format is the Zarr storage specification version this package reads.
const Format = 2

// Well-known metadata keys within a Zarr hierarchy.
const (
	ArrayMetaKey        = ".zarray"
	GroupMetaKey        = ".zgroup"
	AttrsKey            = ".zattrs"
	ConsolidatedKey     = ".zmetadata"
	ConsolidatedVersion = 1
)

// DimensionAttr is the xarray convention for recording named dimensions
// on an array, stored in the array's attributes.
const DimensionAttr = "_ARRAY_DIMENSIONS"

// GroupMeta is the body of a ".zgroup" document.
type GroupMeta struct {
	ZarrFormat int `json:"zarr_format"`
}

// Attrs is the body of a ".zattrs" document: arbitrary userland
// metadata.
type Attrs map[string]interface{}

// StringAttr returns a string-valued attribute, or "" if it is absent
// or not a string.
func (a Attrs) StringAttr(name string) string {
	if v, present := a[name]; present {
		if s, isString := v.(string); isString {
			return s
		}
	}
	return ""
}

// Dimensions returns the xarray dimension names for an array, if its
// attributes carry them.
func (a Attrs) Dimensions() []string {
	v, present := a[DimensionAttr]
	if !present {
		return nil
	}
	items, isList := v.([]interface{})
	if !isList {
		return nil
	}
	dims := make([]string, 0, len(items))
	for _, item := range items {
		if s, isString := item.(string); isString {
			dims = append(dims, s)
		}
	}
	return dims
}

// ArrayMeta is the body of a ".zarray" document.  Every array stores
// one of these; it is required to interpret the chunk objects.
type ArrayMeta struct {
	// ZarrFormat is the storage specification version, always 2 here.
	ZarrFormat int `json:"zarr_format"`

	// Shape gives the length of each dimension of the array.
	Shape []int `json:"shape"`

	// Chunks gives the length of each dimension of a single chunk.
	// All chunks of an array have this shape, including chunks that
	// overhang the edge of the array.
	Chunks []int `json:"chunks"`

	// Dtype describes the binary encoding of a single element.
	Dtype Dtype `json:"dtype"`

	// Compressor identifies the primary compression codec, or is
	// null if chunks are stored uncompressed.
	Compressor *CompressorMeta `json:"compressor"`

	// FillValue is the value of array elements in chunks that were
	// never written.  May be null, a number, or one of the strings
	// "NaN", "Infinity", "-Infinity".
	FillValue interface{} `json:"fill_value"`

	// Order is "C" (row major) or "F" (column major).  This package
	// only decodes C order.
	Order string `json:"order"`

	// Filters lists additional codec configurations applied before
	// the compressor.  Arrays with filters are not supported.
	Filters []CompressorMeta `json:"filters"`

	// DimensionSeparator separates chunk indices in chunk keys,
	// "." by default or "/" for nested layouts.
	DimensionSeparator string `json:"dimension_separator,omitempty"`
}

// Separator returns the chunk key separator, applying the "." default.
func (m *ArrayMeta) Separator() string {
	if m.DimensionSeparator == "" {
		return "."
	}
	return m.DimensionSeparator
}

// Validate checks the invariants this package depends on.  It returns
// the first problem found.
func (m *ArrayMeta) Validate() error {
	if m.ZarrFormat != Format {
		return ErrBadFormat{Version: m.ZarrFormat}
	}
	if len(m.Shape) != len(m.Chunks) {
		return fmt.Errorf("shape has %v dimensions but chunks has %v",
			len(m.Shape), len(m.Chunks))
	}
	for dim, n := range m.Chunks {
		if n <= 0 {
			return fmt.Errorf("chunk length %v in dimension %v", n, dim)
		}
	}
	for dim, n := range m.Shape {
		if n < 0 {
			return fmt.Errorf("array length %v in dimension %v", n, dim)
		}
	}
	if m.Order != "" && m.Order != "C" {
		return ErrUnsupportedOrder{Order: m.Order}
	}
	if len(m.Filters) > 0 {
		return ErrUnsupportedFilters
	}
	return nil
}

// CompressorMeta identifies a compression codec and its parameters, as
// stored in the "compressor" and "filters" metadata fields.
type CompressorMeta struct {
	ID      string `json:"id"`
	Cname   string `json:"cname,omitempty"`
	Clevel  int    `json:"clevel,omitempty"`
	Shuffle int    `json:"shuffle,omitempty"`
	Level   int    `json:"level,omitempty"`
}

// ConsolidatedMetadata is the body of a ".zmetadata" document.  It
// collects every metadata document in the hierarchy under a single key
// so that a reader can learn the whole layout in one fetch.
type ConsolidatedMetadata struct {
	ConsolidatedFormat int                        `json:"zarr_consolidated_format"`
	Metadata           map[string]json.RawMessage `json:"metadata"`
}

// ArrayMeta extracts and parses the ".zarray" document for the named
// array from consolidated metadata.
func (cm *ConsolidatedMetadata) ArrayMeta(array string) (*ArrayMeta, error) {
	raw, present := cm.Metadata[array+"/"+ArrayMetaKey]
	if !present {
		return nil, ErrNoSuchKey{Key: array + "/" + ArrayMetaKey}
	}
	meta := &ArrayMeta{}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("reading %q metadata: %v", array, err)
	}
	return meta, nil
}

// Attrs extracts and parses a ".zattrs" document from consolidated
// metadata.  array may be "" for the root group's attributes.  Missing
// attribute documents are not an error; they decode as an empty map.
func (cm *ConsolidatedMetadata) Attrs(array string) (Attrs, error) {
	key := AttrsKey
	if array != "" {
		key = array + "/" + AttrsKey
	}
	raw, present := cm.Metadata[key]
	if !present {
		return Attrs{}, nil
	}
	attrs := Attrs{}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("reading %q attributes: %v", key, err)
	}
	return attrs, nil
}

// Arrays lists the array names recorded in consolidated metadata, in
// no particular order.
func (cm *ConsolidatedMetadata) Arrays() []string {
	var names []string
	for key := range cm.Metadata {
		if name, isArray := trimSuffixKey(key, ArrayMetaKey); isArray {
			names = append(names, name)
		}
	}
	return names
}

func trimSuffixKey(key, suffix string) (string, bool) {
	want := "/" + suffix
	if len(key) <= len(want) || key[len(key)-len(want):] != want {
		return "", false
	}
	return key[:len(key)-len(want)], true
}
