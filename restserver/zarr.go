// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// Raw Zarr endpoints.  These do not use the resourceHandler skeleton:
// they serve the stored hierarchy documents and chunk bytes exactly
// as a Zarr client pointed at the dataset prefix expects to find
// them, with no gridpub media type involved.

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/restdata"
	"github.com/gridpub/gridpub/zarr"
)

// chunkCacheControl marks chunk responses as immutable.  Chunk
// objects are only ever rewritten by republishing a dataset, which
// changes the dataset mount, so aggressive client caching is safe.
const chunkCacheControl = "public, max-age=31536000, immutable"

// ZarrDocument serves one stored metadata document (".zmetadata",
// ".zgroup", ".zattrs", ".zarray") from a dataset's hierarchy.
func (api *restAPI) ZarrDocument(key string, perVariable bool) http.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request) {
		ctx, err := api.Context(req)
		if err == nil && perVariable && ctx.Variable == nil {
			err = restdata.ErrNotFound{Err: grid.ErrNoSuchVariable{}}
		}
		if err != nil {
			api.zarrError(resp, err)
			return
		}
		storeKey := key
		if perVariable {
			storeKey = ctx.Variable.Name() + "/" + key
		}
		body, err := ctx.Dataset.Store().Get(ctx.Ctx, storeKey)
		if err != nil {
			api.zarrError(resp, err)
			return
		}
		resp.Header().Set("Content-Type", "application/json")
		resp.WriteHeader(http.StatusOK)
		resp.Write(body)
	}
}

// ZarrChunk serves one raw chunk object.  The stored bytes stream out
// still compressed; decompression is the Zarr client's job, and
// recompressing on the way through would only burn CPU on both ends.
func (api *restAPI) ZarrChunk(resp http.ResponseWriter, req *http.Request) {
	ctx, err := api.Context(req)
	if err != nil {
		api.zarrError(resp, err)
		return
	}
	key := mux.Vars(req)["key"]
	body, err := ctx.Variable.ChunkRaw(ctx.Ctx, key)
	if err != nil {
		api.zarrError(resp, err)
		return
	}
	resp.Header().Set("Content-Type", "application/octet-stream")
	resp.Header().Set("Cache-Control", chunkCacheControl)
	resp.WriteHeader(http.StatusOK)
	resp.Write(body)
}

// zarrError writes an error in the shape a Zarr client can make sense
// of: the right status code and a small JSON body.
func (api *restAPI) zarrError(resp http.ResponseWriter, err error) {
	status := httpStatus(err, http.StatusInternalServerError)
	response := restdata.ErrorResponse{}
	response.FromError(err)
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(status)
	if err := restdata.Encode(resp, response); err != nil {
		// The status line is already out; nothing useful left
		// to do.
		_ = err
	}
}

// PopulateZarr adds the raw Zarr routes to a router.  r should be
// rooted at the root of the gridpub URL tree, e.g. "/".
func (api *restAPI) PopulateZarr(r *mux.Router) {
	r.Path("/datasets/{dataset}/zarr/" + zarr.ConsolidatedKey).Name("zarrMetadata").
		HandlerFunc(api.ZarrDocument(zarr.ConsolidatedKey, false))
	r.Path("/datasets/{dataset}/zarr/" + zarr.GroupMetaKey).Name("zarrGroup").
		HandlerFunc(api.ZarrDocument(zarr.GroupMetaKey, false))
	r.Path("/datasets/{dataset}/zarr/" + zarr.AttrsKey).Name("zarrAttrs").
		HandlerFunc(api.ZarrDocument(zarr.AttrsKey, false))
	r.Path("/datasets/{dataset}/zarr/{variable}/" + zarr.ArrayMetaKey).Name("zarrArray").
		HandlerFunc(api.ZarrDocument(zarr.ArrayMetaKey, true))
	r.Path("/datasets/{dataset}/zarr/{variable}/" + zarr.AttrsKey).Name("zarrVariableAttrs").
		HandlerFunc(api.ZarrDocument(zarr.AttrsKey, true))
	r.Path("/datasets/{dataset}/zarr/{variable}/{key}").Name("zarrChunk").
		HandlerFunc(api.ZarrChunk)
}
