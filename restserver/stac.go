// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/gorilla/mux"

	"github.com/gridpub/gridpub/restdata"
	"github.com/gridpub/gridpub/stac"
)

// collectionsDocument is the response of the collection list
// endpoint.
type collectionsDocument struct {
	Collections []stac.Collection `json:"collections"`
	Links       []stac.Link       `json:"links"`
}

// StacRoot serves the root catalog document, with child links
// rebuilt from the index so they stay true as collections come and
// go.
func (api *restAPI) StacRoot(ctx *context) (interface{}, error) {
	catalog := stac.Catalog{
		Type:        "Catalog",
		StacVersion: stac.Version,
		ID:          "gridpub",
		Description: "Datasets served by gridpub",
	}
	if api.Catalog != nil {
		catalog = *api.Catalog
	}

	var root, collections string
	err := buildURLs(api.Router).
		URL(&root, "stac").
		URL(&collections, "stacCollections").
		Error
	if err != nil {
		return nil, err
	}
	catalog.Links = []stac.Link{
		{Rel: stac.RelSelf, Href: root},
		{Rel: stac.RelRoot, Href: root},
	}

	colls, err := api.Index.Collections(ctx.Ctx)
	if err != nil {
		return nil, err
	}
	for _, coll := range colls {
		var href string
		err := buildURLs(api.Router, "collection", coll.ID).
			URL(&href, "stacCollection").
			Error
		if err != nil {
			return nil, err
		}
		catalog.Links = append(catalog.Links, stac.Link{
			Rel:   stac.RelChild,
			Href:  href,
			Title: coll.Title,
		})
	}
	return catalog, nil
}

// StacCollections lists all collections.
func (api *restAPI) StacCollections(ctx *context) (interface{}, error) {
	colls, err := api.Index.Collections(ctx.Ctx)
	if err != nil {
		return nil, err
	}
	var self string
	if err := buildURLs(api.Router).URL(&self, "stacCollections").Error; err != nil {
		return nil, err
	}
	return collectionsDocument{
		Collections: colls,
		Links:       []stac.Link{{Rel: stac.RelSelf, Href: self}},
	}, nil
}

// StacCollection retrieves one collection.
func (api *restAPI) StacCollection(ctx *context) (interface{}, error) {
	coll, err := api.Index.Collection(ctx.Ctx, ctx.Collection)
	if err != nil {
		return nil, err
	}
	return *coll, nil
}

// StacItems lists one collection's items.
func (api *restAPI) StacItems(ctx *context) (interface{}, error) {
	// A missing collection is a missing URL, not an empty list.
	if _, err := api.Index.Collection(ctx.Ctx, ctx.Collection); err != nil {
		return nil, err
	}
	items, err := api.Index.Items(ctx.Ctx, stac.Search{
		Collections: []string{ctx.Collection},
	})
	if err != nil {
		return nil, err
	}
	return stac.ItemCollection{Type: "FeatureCollection", Features: items}, nil
}

// StacItem retrieves one item within a collection.
func (api *restAPI) StacItem(ctx *context) (interface{}, error) {
	item, err := api.Index.Item(ctx.Ctx, ctx.Item)
	if err != nil {
		return nil, err
	}
	if item.Collection != ctx.Collection {
		return nil, stac.ErrNoSuchItem{ID: ctx.Item}
	}
	return *item, nil
}

// StacSearchGet runs an item search described by URL query
// parameters.
func (api *restAPI) StacSearchGet(ctx *context) (interface{}, error) {
	req, err := ctx.SearchRequest()
	if err != nil {
		return nil, err
	}
	return api.runSearch(ctx, req)
}

// StacSearchPost runs an item search submitted as a request body.
func (api *restAPI) StacSearchPost(ctx *context, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.SearchRequest)
	if !valid {
		return nil, errUnmarshal
	}
	return api.runSearch(ctx, req)
}

func (api *restAPI) runSearch(ctx *context, req restdata.SearchRequest) (interface{}, error) {
	search, err := req.ToSearch()
	if err != nil {
		return nil, err
	}
	items, err := api.Index.Items(ctx.Ctx, search)
	if err != nil {
		return nil, err
	}
	return stac.ItemCollection{Type: "FeatureCollection", Features: items}, nil
}

// PopulateStac adds the STAC routes to a router.  r should be rooted
// at the root of the gridpub URL tree, e.g. "/".
func (api *restAPI) PopulateStac(r *mux.Router) {
	r.Path("/stac").Name("stac").Handler(&resourceHandler{
		Representation: stac.Catalog{},
		Context:        api.Context,
		Get:            api.StacRoot,
	})
	r.Path("/stac/collections").Name("stacCollections").Handler(&resourceHandler{
		Representation: stac.Collection{},
		Context:        api.Context,
		Get:            api.StacCollections,
	})
	r.Path("/stac/collections/{collection}").Name("stacCollection").Handler(&resourceHandler{
		Representation: stac.Collection{},
		Context:        api.Context,
		Get:            api.StacCollection,
	})
	r.Path("/stac/collections/{collection}/items").Name("stacItems").Handler(&resourceHandler{
		Representation: stac.ItemCollection{},
		Context:        api.Context,
		Get:            api.StacItems,
	})
	r.Path("/stac/collections/{collection}/items/{item}").Name("stacItem").Handler(&resourceHandler{
		Representation: stac.Item{},
		Context:        api.Context,
		Get:            api.StacItem,
	})
	r.Path("/stac/search").Name("stacSearch").Handler(&resourceHandler{
		Representation: restdata.SearchRequest{},
		Context:        api.Context,
		Get:            api.StacSearchGet,
		Post:           api.StacSearchPost,
	})
}
