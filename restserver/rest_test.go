// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	gocontext "context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/grid/gridtest"
	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/restdata"
	"github.com/gridpub/gridpub/stac"
)

func testRouter(t *testing.T) http.Handler {
	ctx := gocontext.Background()
	ds, err := grid.Open(ctx, gridtest.DemoStore(true), "demo")
	require.NoError(t, err)
	repo := grid.NewRegistry()
	repo.Add(ds)

	index := stac.NewMemoryIndex()
	g := &stac.Generator{ID: "gridpub-test", Description: "test catalog"}
	require.NoError(t, g.Populate(ctx, repo, index))

	return NewRouter(repo, index, nil)
}

func do(t *testing.T, router http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, out interface{}) {
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), out),
		"decoding %v", resp.Body.String())
}

func TestRootDocument(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET", "/", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, restdata.V1JSONMediaType, resp.Header().Get("Content-Type"))

	var root restdata.RootData
	decode(t, resp, &root)
	assert.Equal(t, "/datasets", root.DatasetsURL)
	assert.Equal(t, "/datasets/{dataset}", root.DatasetURL)
	assert.Equal(t, "/stac", root.StacURL)
	assert.Equal(t, "/stac/search", root.StacSearchURL)
}

func TestDatasetList(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET", "/datasets", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var list restdata.DatasetList
	decode(t, resp, &list)
	require.Len(t, list.Datasets, 1)
	assert.Equal(t, "demo", list.Datasets[0].Name)
	assert.Equal(t, "/datasets/demo", list.Datasets[0].URL)
}

func TestDatasetGet(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET", "/datasets/demo", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var ds restdata.Dataset
	decode(t, resp, &ds)
	assert.Equal(t, "demo", ds.Name)
	assert.Equal(t, "/datasets/demo/zarr/.zmetadata", ds.ZarrMetadataURL)
	assert.Equal(t, "/datasets/demo/query", ds.QueryURL)
	assert.Equal(t, "/datasets/demo/variables/{variable}", ds.VariableURL)
	require.Len(t, ds.Variables, 4)
	assert.Equal(t, "gridtest demo dataset", ds.Attrs["title"])
}

func TestDatasetAbsent(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET", "/datasets/nope", "")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var errResp restdata.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, "ErrNoSuchDataset", errResp.Error)
	assert.Equal(t, "nope", errResp.Value)
}

func TestVariableGet(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET", "/datasets/demo/variables/temperature", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var v restdata.Variable
	decode(t, resp, &v)
	assert.Equal(t, "temperature", v.Name)
	assert.Equal(t, []string{"time", "lat", "lon"}, v.Dims)
	assert.Equal(t, []int{4, 3, 5}, v.Shape)
	assert.Equal(t, []int{2, 2, 3}, v.Chunks)
	assert.Equal(t, "<f8", v.Dtype)
	assert.Equal(t, "", v.Axis)
	assert.Equal(t, "/datasets/demo/zarr/temperature/{key}", v.ChunkURL)

	resp = do(t, router, "GET", "/datasets/demo/variables/lat", "")
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &v)
	assert.Equal(t, "Y", v.Axis)

	resp = do(t, router, "GET", "/datasets/demo/variables/pressure", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestZarrMetadata(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET", "/datasets/demo/zarr/.zmetadata", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	var doc map[string]interface{}
	decode(t, resp, &doc)
	assert.Contains(t, doc, "metadata")

	resp = do(t, router, "GET", "/datasets/demo/zarr/.zgroup", "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, router, "GET", "/datasets/demo/zarr/temperature/.zarray", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var array map[string]interface{}
	decode(t, resp, &array)
	assert.Equal(t, "<f8", array["dtype"])
}

func TestZarrChunk(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET", "/datasets/demo/zarr/temperature/0.0.0", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/octet-stream", resp.Header().Get("Content-Type"))
	assert.Equal(t, chunkCacheControl, resp.Header().Get("Cache-Control"))
	assert.NotEmpty(t, resp.Body.Bytes())

	// A chunk that was never written is a 404; Zarr clients fill.
	resp = do(t, router, "GET", "/datasets/demo/zarr/temperature/1.1.1", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(t, router, "GET", "/datasets/demo/zarr/temperature/0.0", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(t, router, "GET", "/datasets/demo/zarr/temperature/..%2Fescape", "")
	assert.NotEqual(t, http.StatusOK, resp.Code)
}

func TestQueryPost(t *testing.T) {
	router := testRouter(t)
	body := `{"variable": "temperature",
		"index": {"time": {"start": 1, "stop": 2}},
		"coords": {"lat": {"min": 15, "max": 30}}}`
	resp := do(t, router, "POST", "/datasets/demo/query", body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result restdata.QueryResponse
	decode(t, resp, &result)
	assert.Equal(t, "temperature", result.Variable)
	assert.Equal(t, []int{1, 2, 5}, result.Shape)
	assert.Equal(t, []int{1, 1, 0}, result.Offset)
	assert.Equal(t, restdata.EncodingJSON, result.Encoding)
	require.Len(t, result.Values, 10)
	assert.Equal(t, gridtest.TempValue(1, 1, 0), result.Values[0])
	assert.Equal(t, []float64{20, 30}, result.Coords["lat"])
}

func TestQueryGet(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET",
		"/datasets/demo/query?var=temperature&bbox=110,10,130,20&start=2021-01-01T06:00:00Z&end=2021-01-01T12:00:00Z&encoding=base64", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result restdata.QueryResponse
	decode(t, resp, &result)
	assert.Equal(t, []int{2, 2, 3}, result.Shape)
	assert.Equal(t, restdata.EncodingBase64, result.Encoding)
	assert.Empty(t, result.Values)

	values, err := result.Result()
	require.NoError(t, err)
	require.Len(t, values, 12)
	assert.Equal(t, gridtest.TempValue(1, 0, 1), values[0])
}

func TestQueryErrors(t *testing.T) {
	router := testRouter(t)

	resp := do(t, router, "GET", "/datasets/demo/query", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code, "no variable named")

	resp = do(t, router, "GET", "/datasets/demo/query?var=temperature&index.depth=0:1", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	var errResp restdata.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, "ErrBadSelection", errResp.Error)

	resp = do(t, router, "GET", "/datasets/demo/query?var=pressure", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestQueryTooLarge(t *testing.T) {
	ctx := gocontext.Background()
	ds, err := grid.Open(ctx, gridtest.DemoStore(true), "demo")
	require.NoError(t, err)
	repo := grid.NewRegistry()
	repo.Add(ds)

	r := mux.NewRouter()
	api := &restAPI{
		Repo:        repo,
		Index:       stac.NewMemoryIndex(),
		Router:      r,
		MaxElements: 10,
	}
	api.PopulateRouter(r)

	resp := do(t, r, "GET", "/datasets/demo/query?var=temperature", "")
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)

	var errResp restdata.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, "ErrTooLarge", errResp.Error)
	assert.Equal(t, "60", errResp.Value)
	back := errResp.ToError()
	tooLarge, ok := back.(query.ErrTooLarge)
	require.True(t, ok)
	assert.Equal(t, 60, tooLarge.Elements)
}

func TestStacEndpoints(t *testing.T) {
	router := testRouter(t)

	resp := do(t, router, "GET", "/stac", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var catalog stac.Catalog
	decode(t, resp, &catalog)
	assert.Equal(t, stac.Version, catalog.StacVersion)
	var childHref string
	for _, link := range catalog.Links {
		if link.Rel == stac.RelChild {
			childHref = link.Href
		}
	}
	assert.Equal(t, "/stac/collections/demo", childHref)

	resp = do(t, router, "GET", "/stac/collections", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var colls collectionsDocument
	decode(t, resp, &colls)
	require.Len(t, colls.Collections, 1)
	assert.Equal(t, "demo", colls.Collections[0].ID)

	resp = do(t, router, "GET", "/stac/collections/demo", "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, router, "GET", "/stac/collections/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(t, router, "GET", "/stac/collections/demo/items", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var items stac.ItemCollection
	decode(t, resp, &items)
	assert.Equal(t, "FeatureCollection", items.Type)
	require.Len(t, items.Features, 1)

	resp = do(t, router, "GET", "/stac/collections/demo/items/demo", "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, router, "GET", "/stac/collections/nope/items/demo", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStacSearch(t *testing.T) {
	router := testRouter(t)

	resp := do(t, router, "GET", "/stac/search?bbox=120,20,130,25", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var items stac.ItemCollection
	decode(t, resp, &items)
	require.Len(t, items.Features, 1)
	assert.Equal(t, "demo", items.Features[0].ID)

	resp = do(t, router, "GET", "/stac/search?bbox=0,0,1,1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &items)
	assert.Empty(t, items.Features)

	resp = do(t, router, "POST", "/stac/search",
		`{"collections": ["demo"], "datetime": "2021-01-01T00:00:00Z/.."}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	decode(t, resp, &items)
	assert.Len(t, items.Features, 1)

	resp = do(t, router, "GET", "/stac/search?datetime=2022-01-01T00:00:00Z/..", "")
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &items)
	assert.Empty(t, items.Features)
}

func TestHealth(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestNotAcceptable(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest("GET", "/datasets", nil)
	req.Header.Set("Accept", "text/html")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotAcceptable, resp.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	router := testRouter(t)
	resp := do(t, router, "POST", "/datasets", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}
