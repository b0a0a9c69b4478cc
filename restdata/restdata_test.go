// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/stac"
)

func TestMaybeEncodeName(t *testing.T) {
	tests := []struct{ in, out string }{
		{"temperature", "temperature"},
		{"t2m.mean", "t2m.mean"},
		{"", "-"},
		{"-", "-LQ"},
		{"sea level", "-c2VhIGxldmVs"},
		{"温度", "-5rip5bqm"},
	}
	for _, test := range tests {
		assert.Equal(t, test.out, MaybeEncodeName(test.in),
			"encoding %q", test.in)
		back, err := MaybeDecodeName(test.out)
		if assert.NoError(t, err, "decoding %q", test.out) {
			assert.Equal(t, test.in, back, "decoding %q", test.out)
		}
	}
}

func TestMaybeDecodeNameBad(t *testing.T) {
	_, err := MaybeDecodeName("-???")
	assert.Error(t, err)
}

func TestErrorRoundTrip(t *testing.T) {
	tests := []error{
		grid.ErrNoSuchDataset{Name: "demo"},
		grid.ErrNoSuchVariable{Dataset: "demo", Name: "pressure"},
		grid.ErrNotZarr{Name: "demo"},
		stac.ErrNoSuchCollection{ID: "era"},
		stac.ErrNoSuchItem{ID: "era-2021"},
	}
	for _, err := range tests {
		resp := ErrorResponse{}
		resp.FromError(err)
		assert.Equal(t, err, resp.ToError(), "round-tripping %v", err)
	}
}

func TestErrorNotFoundUnwrap(t *testing.T) {
	resp := ErrorResponse{}
	resp.FromError(ErrNotFound{Err: grid.ErrNoSuchDataset{Name: "demo"}})
	assert.Equal(t, "ErrNoSuchDataset", resp.Error)
	assert.Equal(t, "demo", resp.Value)
	assert.Equal(t, grid.ErrNoSuchDataset{Name: "demo"}, resp.ToError())
}

func TestErrorTooLarge(t *testing.T) {
	resp := ErrorResponse{}
	resp.FromError(query.ErrTooLarge{Elements: 4096, Limit: 100})
	assert.Equal(t, "ErrTooLarge", resp.Error)
	assert.Equal(t, "4096", resp.Value)

	back := resp.ToError()
	tooLarge, ok := back.(query.ErrTooLarge)
	require.True(t, ok)
	assert.Equal(t, 4096, tooLarge.Elements)
}

func TestErrorGeneric(t *testing.T) {
	resp := ErrorResponse{}
	resp.FromError(assert.AnError)
	assert.Equal(t, "error", resp.Error)
	assert.Equal(t, assert.AnError.Error(), resp.ToError().Error())
}

func TestErrorStatuses(t *testing.T) {
	assert.Equal(t, 404, ErrNotFound{Err: assert.AnError}.HTTPStatus())
	assert.Equal(t, 400, ErrBadRequest{Err: assert.AnError}.HTTPStatus())
	assert.Equal(t, 415, ErrUnsupportedMediaType{Type: "text/html"}.HTTPStatus())
}

func TestDecode(t *testing.T) {
	body := `{"error": "ErrNoSuchDataset", "message": "whoops", "value": "x"}`
	var resp ErrorResponse
	err := Decode(V1JSONMediaType, strings.NewReader(body), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ErrNoSuchDataset", resp.Error)

	err = Decode("application/json; charset=utf-8", strings.NewReader(body), &resp)
	assert.NoError(t, err)

	err = Decode("text/html", strings.NewReader(body), &resp)
	assert.Equal(t, ErrUnsupportedMediaType{Type: "text/html"}, err)

	err = Decode("", strings.NewReader(body), &resp)
	assert.Equal(t, ErrUnsupportedMediaType{Type: "application/octet-stream"}, err)
}

func TestEncodeDecode(t *testing.T) {
	req := QueryRequest{
		Variable: "temperature",
		Index:    map[string]query.Range{"time": {Start: 1, Stop: 3}},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, req))

	var back QueryRequest
	require.NoError(t, Decode(V1JSONMediaType, &buf, &back))
	assert.Equal(t, req, back)
}

func TestQueryResponseJSON(t *testing.T) {
	resp := QueryResponse{}
	require.NoError(t, resp.SetResult([]float64{1, 2, 3}, ""))
	assert.Equal(t, EncodingJSON, resp.Encoding)
	assert.Equal(t, "<f8", resp.Dtype)
	assert.Empty(t, resp.Data)

	values, err := resp.Result()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, values)
}

func TestQueryResponseBase64(t *testing.T) {
	in := []float64{1.5, -2.25, math.NaN()}
	resp := QueryResponse{}
	require.NoError(t, resp.SetResult(in, EncodingBase64))
	assert.Equal(t, EncodingBase64, resp.Encoding)
	assert.Empty(t, resp.Values)
	assert.NotEmpty(t, resp.Data)

	values, err := resp.Result()
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, 1.5, values[0])
	assert.Equal(t, -2.25, values[1])
	assert.True(t, math.IsNaN(values[2]), "NaN survives the wire")
}

func TestQueryResponseBadEncoding(t *testing.T) {
	resp := QueryResponse{}
	err := resp.SetResult([]float64{1}, "yaml")
	var bad ErrBadRequest
	assert.ErrorAs(t, err, &bad)
}
