// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/restdata"
)

// Dataset is a client-side handle on one remote dataset.
type Dataset struct {
	resource
	Representation restdata.Dataset
}

// Refresh re-fetches the dataset document.
func (ds *Dataset) Refresh() error {
	ds.Representation = restdata.Dataset{}
	return ds.Get(&ds.Representation)
}

// Name returns the dataset's name.
func (ds *Dataset) Name() string {
	return ds.Representation.Name
}

// VariableNames lists the names of the dataset's variables.
func (ds *Dataset) VariableNames() []string {
	names := make([]string, len(ds.Representation.Variables))
	for i, v := range ds.Representation.Variables {
		names[i] = v.Name
	}
	return names
}

// Variable retrieves one variable by name.
func (ds *Dataset) Variable(name string) (*Variable, error) {
	var err error
	v := &Variable{}
	v.URL, err = ds.Template(ds.Representation.VariableURL, map[string]interface{}{"variable": name})
	if err == nil {
		err = v.Refresh()
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ZarrMetadata retrieves the dataset's Zarr consolidated metadata
// document, as stored.
func (ds *Dataset) ZarrMetadata() ([]byte, error) {
	return ds.GetBytes(ds.Representation.ZarrMetadataURL, map[string]interface{}{})
}

// Query runs one read against the dataset and assembles the decoded
// result.  The request's encoding only affects the wire format; the
// returned values are always float64 in C order.
func (ds *Dataset) Query(req restdata.QueryRequest) (*query.Result, error) {
	resp := restdata.QueryResponse{}
	err := ds.PostTo(ds.Representation.QueryURL, map[string]interface{}{}, req, &resp)
	if err != nil {
		return nil, err
	}
	values, err := resp.Result()
	if err != nil {
		return nil, err
	}
	return &query.Result{
		Variable: resp.Variable,
		Dims:     resp.Dims,
		Shape:    resp.Shape,
		Offset:   resp.Offset,
		Coords:   resp.Coords,
		Values:   values,
	}, nil
}

// Variable is a client-side handle on one remote variable.
type Variable struct {
	resource
	Representation restdata.Variable
}

// Refresh re-fetches the variable document.
func (v *Variable) Refresh() error {
	v.Representation = restdata.Variable{}
	return v.Get(&v.Representation)
}

// Name returns the variable's name.
func (v *Variable) Name() string {
	return v.Representation.Name
}

// Chunk retrieves one raw stored chunk by key, still compressed the
// way the store holds it.
func (v *Variable) Chunk(key string) ([]byte, error) {
	return v.GetBytes(v.Representation.ChunkURL, map[string]interface{}{"key": key})
}
