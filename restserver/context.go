// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	gocontext "context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/restdata"
)

// errUnmarshal is returned if the post contract is violated and a
// handler function is passed the wrong type.
var errUnmarshal = restdata.ErrBadRequest{
	Err: errors.New("Invalid input format"),
}

// context holds all of the information and objects that can be
// extracted from URL parameters.
type context struct {
	// Ctx is the request's own context, for store reads.
	Ctx gocontext.Context

	Dataset     *grid.Dataset
	Variable    *grid.Variable
	Collection  string
	Item        string
	QueryParams url.Values
}

func (api *restAPI) Context(req *http.Request) (ctx *context, err error) {
	ctx = &context{}
	ctx.Ctx = req.Context()
	ctx.QueryParams = req.URL.Query()
	vars := mux.Vars(req)

	var present bool
	var dataset, variable string

	if dataset, present = vars["dataset"]; present && err == nil {
		dataset, err = restdata.MaybeDecodeName(dataset)
		if err == nil {
			ctx.Dataset, err = api.Repo.Dataset(dataset)
		}
		if _, missing := err.(grid.ErrNoSuchDataset); missing {
			err = restdata.ErrNotFound{Err: err}
		}
	}

	if variable, present = vars["variable"]; present && err == nil && ctx.Dataset != nil {
		variable, err = restdata.MaybeDecodeName(variable)
		if err == nil {
			ctx.Variable, err = ctx.Dataset.Variable(variable)
		}
		if _, missing := err.(grid.ErrNoSuchVariable); missing {
			err = restdata.ErrNotFound{Err: err}
		}
	}

	// Collections and items are looked up by the handlers; the
	// context only carries the decoded names.
	if collection, present := vars["collection"]; present && err == nil {
		ctx.Collection, err = restdata.MaybeDecodeName(collection)
	}
	if item, present := vars["item"]; present && err == nil {
		ctx.Item, err = restdata.MaybeDecodeName(item)
	}

	return
}

// QueryRequest builds a query request from URL query parameters; this
// is the HTTP GET flavor of the query endpoint.  Recognized
// parameters are "var", "bbox" (west,south,east,north), "start" and
// "end" (RFC 3339), "encoding", and per-dimension "index.DIM=LO:HI"
// and "coord.DIM=MIN:MAX".
func (ctx *context) QueryRequest() (req restdata.QueryRequest, err error) {
	req.Variable = ctx.QueryParams.Get("var")
	req.Encoding = ctx.QueryParams.Get("encoding")

	if bbox := ctx.QueryParams.Get("bbox"); bbox != "" {
		req.Bbox, err = parseFloats(bbox, 4)
		if err != nil {
			return req, restdata.ErrBadRequest{Err: fmt.Errorf("bbox: %v", err)}
		}
	}

	if req.Start, err = parseTimeParam(ctx.QueryParams.Get("start")); err != nil {
		return req, restdata.ErrBadRequest{Err: fmt.Errorf("start: %v", err)}
	}
	if req.End, err = parseTimeParam(ctx.QueryParams.Get("end")); err != nil {
		return req, restdata.ErrBadRequest{Err: fmt.Errorf("end: %v", err)}
	}

	for name, values := range ctx.QueryParams {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch {
		case strings.HasPrefix(name, "index."):
			dim := strings.TrimPrefix(name, "index.")
			var lo, hi int
			if _, err := fmt.Sscanf(value, "%d:%d", &lo, &hi); err != nil {
				return req, restdata.ErrBadRequest{Err: fmt.Errorf("%v: %v", name, err)}
			}
			if req.Index == nil {
				req.Index = map[string]query.Range{}
			}
			req.Index[dim] = query.Range{Start: lo, Stop: hi}
		case strings.HasPrefix(name, "coord."):
			dim := strings.TrimPrefix(name, "coord.")
			bounds, err := parseBounds(value)
			if err != nil {
				return req, restdata.ErrBadRequest{Err: fmt.Errorf("%v: %v", name, err)}
			}
			if req.Coords == nil {
				req.Coords = map[string]query.Bounds{}
			}
			req.Coords[dim] = bounds
		}
	}
	return req, nil
}

// SearchRequest builds a STAC search from URL query parameters; this
// is the HTTP GET flavor of the search endpoint.  Recognized
// parameters are "collections" (comma-separated), "bbox", "datetime"
// (a timestamp or START/END interval with ".." for open ends), and
// "limit".
func (ctx *context) SearchRequest() (search restdata.SearchRequest, err error) {
	if collections := ctx.QueryParams.Get("collections"); collections != "" {
		search.Collections = strings.Split(collections, ",")
	}
	if bbox := ctx.QueryParams.Get("bbox"); bbox != "" {
		search.Bbox, err = parseFloats(bbox, 4)
		if err != nil {
			return search, restdata.ErrBadRequest{Err: fmt.Errorf("bbox: %v", err)}
		}
	}
	if datetime := ctx.QueryParams.Get("datetime"); datetime != "" {
		search.Datetime = datetime
	}
	if limit := ctx.QueryParams.Get("limit"); limit != "" {
		search.Limit, err = strconv.Atoi(limit)
		if err != nil {
			return search, restdata.ErrBadRequest{Err: fmt.Errorf("limit: %v", err)}
		}
	}
	return search, nil
}

func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("want %v comma-separated numbers, got %v", want, len(parts))
	}
	out := make([]float64, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out[i] = value
	}
	return out, nil
}

func parseBounds(s string) (query.Bounds, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return query.Bounds{}, fmt.Errorf("want MIN:MAX, got %q", s)
	}
	min, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return query.Bounds{}, err
	}
	max, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return query.Bounds{}, err
	}
	return query.Bounds{Min: min, Max: max}, nil
}

func parseTimeParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	stamp, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	stamp = stamp.UTC()
	return &stamp, nil
}
