// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/restdata"
)

// QueryPost runs a query submitted as a request body.
func (api *restAPI) QueryPost(ctx *context, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.QueryRequest)
	if !valid {
		return nil, errUnmarshal
	}
	return api.runQuery(ctx, req)
}

// QueryGet runs a query described by URL query parameters.
func (api *restAPI) QueryGet(ctx *context) (interface{}, error) {
	req, err := ctx.QueryRequest()
	if err != nil {
		return nil, err
	}
	return api.runQuery(ctx, req)
}

func (api *restAPI) runQuery(ctx *context, req restdata.QueryRequest) (interface{}, error) {
	if req.Variable == "" {
		return nil, restdata.ErrBadRequest{Err: errors.New("no variable named")}
	}

	q := query.Query{
		Variable:    req.Variable,
		Index:       req.Index,
		Start:       req.Start,
		End:         req.End,
		MaxElements: api.MaxElements,
	}
	for dim, bounds := range req.Coords {
		if q.Coord == nil {
			q.Coord = map[string]query.Bounds{}
		}
		q.Coord[dim] = bounds
	}

	// A bbox is shorthand for coordinate bounds on the variable's
	// horizontal axes.
	if len(req.Bbox) > 0 {
		if len(req.Bbox) != 4 {
			return nil, restdata.ErrBadRequest{Err: errors.New("bbox wants 4 values")}
		}
		v, err := ctx.Dataset.Variable(req.Variable)
		if err != nil {
			return nil, err
		}
		x := v.AxisCoordinate(grid.AxisX)
		y := v.AxisCoordinate(grid.AxisY)
		if x == nil || y == nil {
			return nil, query.ErrBadSelection{Dim: "bbox", Reason: "variable has no horizontal axes"}
		}
		if q.Coord == nil {
			q.Coord = map[string]query.Bounds{}
		}
		q.Coord[x.Name()] = query.Bounds{Min: req.Bbox[0], Max: req.Bbox[2]}
		q.Coord[y.Name()] = query.Bounds{Min: req.Bbox[1], Max: req.Bbox[3]}
	}

	res, err := query.Execute(ctx.Ctx, ctx.Dataset, q)
	if err != nil {
		return nil, err
	}

	resp := restdata.QueryResponse{
		Variable: res.Variable,
		Dims:     res.Dims,
		Shape:    res.Shape,
		Offset:   res.Offset,
		Coords:   res.Coords,
	}
	if err := resp.SetResult(res.Values, req.Encoding); err != nil {
		return nil, err
	}
	return resp, nil
}
