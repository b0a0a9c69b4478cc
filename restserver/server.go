// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/restdata"
	"github.com/gridpub/gridpub/stac"
)

// NewRouter creates a new HTTP handler that processes all gridpub
// requests.  All resources are under the URL path root, e.g.
// /datasets/demo.  For more control over this setup, create a
// mux.Router and call PopulateRouter instead.
//
// catalog may be nil, in which case a bare root catalog document is
// served at /stac.
func NewRouter(repo grid.Repository, index stac.Index, catalog *stac.Catalog) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, repo, index, catalog)
	return r
}

// PopulateRouter adds gridpub routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the interface under a subpath:
//
//	r := mux.NewRouter()
//	s := r.PathPrefix("/api").Subrouter()
//	PopulateRouter(s, repo, index, catalog)
func PopulateRouter(r *mux.Router, repo grid.Repository, index stac.Index, catalog *stac.Catalog) {
	api := &restAPI{
		Repo:        repo,
		Index:       index,
		Catalog:     catalog,
		Router:      r,
		MaxElements: query.DefaultMaxElements,
	}
	api.PopulateRouter(r)
}

// restAPI holds the persistent state for the gridpub REST API.
type restAPI struct {
	Repo    grid.Repository
	Index   stac.Index
	Catalog *stac.Catalog
	Router  *mux.Router

	// MaxElements caps the size of query results.
	MaxElements int
}

// PopulateRouter adds all gridpub URL paths to a router.
func (api *restAPI) PopulateRouter(r *mux.Router) {
	api.PopulateDataset(r)
	api.PopulateZarr(r)
	api.PopulateStac(r)
	r.Path("/healthz").Name("health").HandlerFunc(api.Health)
	r.Path("/").Name("root").Handler(&resourceHandler{
		Representation: restdata.RootData{},
		Context:        api.Context,
		Get:            api.RootDocument,
	})
}

// RootDocument produces the service root document with links to
// everything else.
func (api *restAPI) RootDocument(ctx *context) (interface{}, error) {
	resp := restdata.RootData{}
	err := buildURLs(api.Router).
		URL(&resp.URL, "root").
		URL(&resp.DatasetsURL, "datasets").
		Template(&resp.DatasetURL, "dataset", "dataset").
		URL(&resp.StacURL, "stac").
		URL(&resp.StacSearchURL, "stacSearch").
		Error
	return resp, err
}

// Health answers liveness probes.  It intentionally does not touch
// the object store; a wedged backend should show up in request
// metrics, not take the whole process out of rotation.
func (api *restAPI) Health(resp http.ResponseWriter, req *http.Request) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(http.StatusOK)
	resp.Write([]byte(`{"status":"ok"}`))
}
