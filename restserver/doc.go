// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes the gridpub REST API via HTTP.  It
// serves three families of endpoints from one router: the typed
// gridpub resources (datasets, variables, queries) described by the
// restdata package, the raw Zarr hierarchy of each dataset so that
// unmodified Zarr clients can read served data directly, and a STAC
// catalog view for discovery.
//
// The typical way to use this is to create a dataset repository and a
// STAC index and mount the router:
//
//	registry, err := grid.OpenMounts(ctx, store, mounts)
//	index := stac.NewMemoryIndex()
//	...
//	http.ListenAndServe(":8080", restserver.NewRouter(registry, index, nil))
//
// The REST API is described in more detail in the restdata package
// documentation.  Response representations are chosen by Accept:
// header content negotiation; JSON is the only encoding today, but
// the version is carried in the media type so it does not have to
// stay that way.
package restserver
