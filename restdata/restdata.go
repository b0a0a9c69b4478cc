// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines common data structures shared between the
// restserver and restclient packages.  Generally JSON encodings of
// these are passed across the wire as the
// application/vnd.gridpub.v1+json MIME type.
//
// API Usage
//
// HTTP GET the root document at its specified URL.  This will return
// a JSON serialization of the RootData object.  That serialization
// has links to other resources; follow these links, possibly filling
// in template values, to get to other resources.
//
// Many of the URL fields are actually RFC 6570 URI templates.
// This is a fancy way of saying that they are URL strings with a
// {parameter} in curly braces.  For instance, if the system is rooted
// at /, a JSON serialization of RootData will look like
//
//	{
//	    "datasets_url": "/datasets",
//	    "dataset_url": "/datasets/{dataset}",
//	    ...
//	}
//
// While the URL structure is predictable and formulaic, it is not
// actually part of the API contract.  The only specific guarantee is
// that retrieving the root resource will return a serialization of
// RootData.
//
// Encoding Considerations
//
// A name that appears in a URL string must be made of ASCII
// characters that can be represented unescaped.  Other names are
// escaped by encoding their byte representations using the base64
// URL-safe encoding with no padding, and prepending a hyphen to the
// name.  Names that would be otherwise safe and begin with hyphens
// are also encoded.
//
// Query result data can be conveyed two ways.  With the "json"
// encoding the response carries a "values" array of JSON numbers in C
// order.  With the "base64" encoding it carries a "data" string: the
// standard base64 encoding of the values as little-endian IEEE 754
// float64, which survives NaN fill values that JSON cannot express.
//
// Timestamps, when they appear, are represented in JSON as RFC 3339
// strings, "2012-03-04T05:06:07.890Z".
//
// The Zarr endpoints under each dataset are not described by these
// structures: they serve the stored ".zmetadata", ".zgroup",
// ".zattrs", and ".zarray" documents and raw chunk bytes exactly as a
// Zarr client expects to find them.
//
// Errors
//
// Most errors should be returned as encodings of the ErrorResponse
// type.  This can round-trip the well-known grid, query, and stac
// errors but may return most other errors as plain strings that are
// not the same objects as other standard errors.
//
// If Go server code panics, this should be captured and returned as
// an ErrorResponse with error code "panic".
package restdata

import (
	"strings"
	"time"

	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/stac"
)

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/vnd.gridpub.v1+json"

// JSONMediaType requests the most recent version of the JSON
// representation of this content.
const JSONMediaType = "application/vnd.gridpub+json"

// Resource is a base type for all resources in this module.
type Resource struct {
	// URL points at this resource.  If this record is a "short"
	// record, the contents of this URL are the full record.
	URL string `json:"url"`
}

// NamedResource is a resource with a name.
type NamedResource struct {
	Resource

	// Name holds the name of this resource.
	Name string `json:"name"`
}

// RootData is returned by the root path.
type RootData struct {
	Resource

	// DatasetsURL points at the dataset list.  This endpoint
	// supports HTTP GET to return a DatasetList.
	DatasetsURL string `json:"datasets_url"`

	// DatasetURL points at the representation of a single dataset.
	// This endpoint supports HTTP GET, and its representation is a
	// Dataset.  This field is a URI template with a single
	// parameter, "dataset", which should be substituted for the
	// (possibly escaped) name of the dataset.
	DatasetURL string `json:"dataset_url"`

	// StacURL points at the root STAC catalog.  This endpoint
	// supports HTTP GET, and its representation is a stac.Catalog.
	StacURL string `json:"stac_url"`

	// StacSearchURL points at the STAC item search endpoint.  This
	// endpoint supports HTTP GET and POST, and its representation
	// is a stac.ItemCollection.
	StacSearchURL string `json:"stac_search_url"`
}

// DatasetShort provides minimal data to identify a single dataset.
type DatasetShort struct {
	NamedResource
}

// DatasetList is a list of DatasetShort.
type DatasetList struct {
	// Datasets is a list of the datasets served by the system.
	Datasets []DatasetShort `json:"datasets"`
}

// Dataset provides full details about a dataset.
type Dataset struct {
	DatasetShort

	// Attrs holds the dataset's root attributes, as stored.
	Attrs map[string]interface{} `json:"attrs,omitempty"`

	// Variables lists the dataset's variables.
	Variables []VariableShort `json:"variables"`

	// VariableURL points at the representation of a single
	// variable.  This endpoint supports HTTP GET, and its
	// representation is a Variable.  This is a URI template with a
	// single parameter, "variable", which should be substituted
	// for the (possibly escaped) name of the variable.
	VariableURL string `json:"variable_url"`

	// ZarrMetadataURL points at the dataset's Zarr consolidated
	// metadata document.  A Zarr client pointed at the directory
	// containing it can read the dataset directly.
	ZarrMetadataURL string `json:"zarr_metadata_url"`

	// QueryURL points at the dataset's query endpoint.  This
	// endpoint supports HTTP POST, submitting a QueryRequest and
	// returning a QueryResponse, and HTTP GET with the equivalent
	// query parameters.
	QueryURL string `json:"query_url"`
}

// VariableShort provides minimal data to identify a variable.
type VariableShort struct {
	NamedResource

	// Dims holds the variable's dimension names, parallel to its
	// shape.
	Dims []string `json:"dims"`

	// Shape holds the variable's extent along each dimension.
	Shape []int `json:"shape"`
}

// Variable provides full details about a variable.
type Variable struct {
	VariableShort

	// Chunks holds the variable's chunk extent along each
	// dimension.
	Chunks []int `json:"chunks"`

	// Dtype is the variable's numpy-style dtype string, for
	// example "<f4".
	Dtype string `json:"dtype"`

	// Axis marks recognized CF coordinate variables as "X", "Y",
	// "Z", or "T"; empty otherwise.
	Axis string `json:"axis,omitempty"`

	// Attrs holds the variable's attributes, as stored.
	Attrs map[string]interface{} `json:"attrs,omitempty"`

	// ChunkURL points at one stored chunk of this variable.  This
	// endpoint supports HTTP GET and returns the raw stored chunk
	// bytes as application/octet-stream; a chunk that was never
	// written returns 404.  This is a URI template with a single
	// parameter, "key", the chunk key such as "0.1.4".
	ChunkURL string `json:"chunk_url"`
}

// Encoding names for QueryRequest.Encoding.
const (
	// EncodingJSON returns values as a JSON number array.
	EncodingJSON = "json"

	// EncodingBase64 returns values as base64 little-endian
	// float64.
	EncodingBase64 = "base64"
)

// QueryRequest describes one read against a dataset.
type QueryRequest struct {
	// Variable is the data variable to read.
	Variable string `json:"variable"`

	// Index constrains dimensions by half-open index ranges.
	Index map[string]query.Range `json:"index,omitempty"`

	// Coords constrains dimensions by coordinate values,
	// inclusive on both ends.
	Coords map[string]query.Bounds `json:"coords,omitempty"`

	// Bbox constrains the variable's horizontal axes to
	// [west, south, east, north], a shorthand for the equivalent
	// two Coords entries.
	Bbox []float64 `json:"bbox,omitempty"`

	// Start and End constrain the variable's time axis, inclusive
	// on both ends.
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`

	// Encoding selects the response data encoding, "json" or
	// "base64"; empty means "json".
	Encoding string `json:"encoding,omitempty"`
}

// QueryResponse carries an assembled query result.
type QueryResponse struct {
	// Variable is the variable that was read.
	Variable string `json:"variable"`

	// Dims, Shape, and Offset position the result box within the
	// variable, parallel slices in dimension order.
	Dims   []string `json:"dims"`
	Shape  []int    `json:"shape"`
	Offset []int    `json:"offset"`

	// Coords holds the coordinate values covering the box for
	// each dimension that has a coordinate variable.
	Coords map[string][]float64 `json:"coords,omitempty"`

	// Dtype is the dtype of the returned data, always "<f8".
	Dtype string `json:"dtype"`

	// Encoding is the data encoding in use, "json" or "base64".
	Encoding string `json:"encoding"`

	// Values holds the data as JSON numbers in C order, when
	// Encoding is "json".
	Values []float64 `json:"values,omitempty"`

	// Data holds the data as base64 little-endian float64 in C
	// order, when Encoding is "base64".
	Data string `json:"data,omitempty"`
}

// SearchRequest is the body of the STAC item search endpoint.  The
// equivalent HTTP GET accepts the same fields as query parameters.
type SearchRequest struct {
	// Collections restricts results to these collection ids.
	Collections []string `json:"collections,omitempty"`

	// Bbox restricts results to items intersecting
	// [west, south, east, north].
	Bbox []float64 `json:"bbox,omitempty"`

	// Datetime restricts results temporally: a single RFC 3339
	// timestamp, or a "START/END" interval where either end may be
	// ".." or empty for open.
	Datetime string `json:"datetime,omitempty"`

	// Limit caps the number of items returned.
	Limit int `json:"limit,omitempty"`
}

// ToSearch translates the wire search into the stac package's search
// parameters, parsing the datetime interval.
func (req SearchRequest) ToSearch() (stac.Search, error) {
	search := stac.Search{
		Collections: req.Collections,
		Bbox:        req.Bbox,
		Limit:       req.Limit,
	}
	if req.Datetime == "" {
		return search, nil
	}
	parse := func(s string) (*time.Time, error) {
		if s == "" || s == ".." {
			return nil, nil
		}
		stamp, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, ErrBadRequest{Err: err}
		}
		stamp = stamp.UTC()
		return &stamp, nil
	}
	var err error
	if i := strings.IndexByte(req.Datetime, '/'); i >= 0 {
		if search.Start, err = parse(req.Datetime[:i]); err != nil {
			return search, err
		}
		if search.End, err = parse(req.Datetime[i+1:]); err != nil {
			return search, err
		}
	} else {
		if search.Start, err = parse(req.Datetime); err != nil {
			return search, err
		}
		search.End = search.Start
	}
	return search, nil
}

// ItemCollection is the response of the STAC search endpoint.  It is
// an alias so restclient callers need not import the stac package
// separately for searches.
type ItemCollection = stac.ItemCollection

// ErrorResponse can be a response to any method, generally accompanied
// by a failing HTTP status code.
type ErrorResponse struct {
	// Error is a short description of the failure.  This may be
	// the name or type of a gridpub API error, the string "panic",
	// or the string "error" for some other kind of error.
	Error string `json:"error"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Value is an extra parameter to the error if applicable.
	Value string `json:"value,omitempty"`

	// Stack holds a formatted backtrace, if the method failed
	// due to a panic.
	Stack string `json:"stack,omitempty"`
}
