// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/gorilla/mux"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/restdata"
)

func (api *restAPI) fillDatasetShort(ds *grid.Dataset, summary *restdata.DatasetShort) error {
	summary.Name = ds.Name()
	return buildURLs(api.Router, "dataset", summary.Name).
		URL(&summary.URL, "dataset").
		Error
}

func (api *restAPI) fillDataset(ds *grid.Dataset, result *restdata.Dataset) error {
	err := api.fillDatasetShort(ds, &result.DatasetShort)
	if err == nil {
		err = buildURLs(api.Router, "dataset", result.Name).
			Template(&result.VariableURL, "variable", "variable").
			URL(&result.ZarrMetadataURL, "zarrMetadata").
			URL(&result.QueryURL, "datasetQuery").
			Error
	}
	if err != nil {
		return err
	}
	result.Attrs = ds.Attrs()
	for _, name := range ds.VariableNames() {
		v, err := ds.Variable(name)
		if err != nil {
			return err
		}
		summary := restdata.VariableShort{}
		if err := api.fillVariableShort(v, &summary); err != nil {
			return err
		}
		result.Variables = append(result.Variables, summary)
	}
	return nil
}

func (api *restAPI) fillVariableShort(v *grid.Variable, summary *restdata.VariableShort) error {
	summary.Name = v.Name()
	summary.Dims = v.Dims()
	summary.Shape = v.Meta().Shape
	return buildURLs(api.Router, "dataset", v.Dataset().Name(), "variable", v.Name()).
		URL(&summary.URL, "variable").
		Error
}

func (api *restAPI) fillVariable(v *grid.Variable, result *restdata.Variable) error {
	err := api.fillVariableShort(v, &result.VariableShort)
	if err == nil {
		err = buildURLs(api.Router, "dataset", v.Dataset().Name(), "variable", v.Name()).
			Template(&result.ChunkURL, "zarrChunk", "key").
			Error
	}
	if err != nil {
		return err
	}
	result.Chunks = v.Meta().Chunks
	result.Dtype = v.Meta().Dtype.String()
	result.Axis = v.Axis().String()
	result.Attrs = v.Attrs()
	return nil
}

// DatasetList gets a list of all datasets served by the system.
func (api *restAPI) DatasetList(ctx *context) (interface{}, error) {
	result := restdata.DatasetList{Datasets: []restdata.DatasetShort{}}
	for _, name := range api.Repo.DatasetNames() {
		ds, err := api.Repo.Dataset(name)
		if err != nil {
			return nil, err
		}
		summary := restdata.DatasetShort{}
		if err := api.fillDatasetShort(ds, &summary); err != nil {
			return nil, err
		}
		result.Datasets = append(result.Datasets, summary)
	}
	return result, nil
}

// DatasetGet retrieves one dataset's details.
func (api *restAPI) DatasetGet(ctx *context) (interface{}, error) {
	result := restdata.Dataset{}
	if err := api.fillDataset(ctx.Dataset, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// VariableGet retrieves one variable's details.
func (api *restAPI) VariableGet(ctx *context) (interface{}, error) {
	result := restdata.Variable{}
	if err := api.fillVariable(ctx.Variable, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PopulateDataset adds dataset-specific routes to a router.  r should
// be rooted at the root of the gridpub URL tree, e.g. "/".
func (api *restAPI) PopulateDataset(r *mux.Router) {
	r.Path("/datasets").Name("datasets").Handler(&resourceHandler{
		Representation: restdata.DatasetShort{},
		Context:        api.Context,
		Get:            api.DatasetList,
	})
	r.Path("/datasets/{dataset}").Name("dataset").Handler(&resourceHandler{
		Representation: restdata.Dataset{},
		Context:        api.Context,
		Get:            api.DatasetGet,
	})
	r.Path("/datasets/{dataset}/variables/{variable}").Name("variable").Handler(&resourceHandler{
		Representation: restdata.Variable{},
		Context:        api.Context,
		Get:            api.VariableGet,
	})
	r.Path("/datasets/{dataset}/query").Name("datasetQuery").Handler(&resourceHandler{
		Representation: restdata.QueryRequest{},
		Context:        api.Context,
		Get:            api.QueryGet,
		Post:           api.QueryPost,
	})
}
