// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides an HTTP REST client that talks to the
// matching server in the "restserver" package.
//
// The server in github.com/gridpub/gridpub/cmd/gridpubd runs a
// compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//	c, err := restclient.New("http://localhost:5980/")
//
// The client navigates by the URLs the server hands out, starting at
// the root document, so it keeps working if the service is mounted
// under a path prefix.
package restclient

import (
	"net/url"

	"github.com/gridpub/gridpub/restdata"
	"github.com/gridpub/gridpub/stac"
)

// New creates a new client that speaks to an external gridpub REST
// server.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{resource: resource{URL: u}}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Client is the entry point to a remote gridpub service.  It holds
// the service's root document.
type Client struct {
	resource
	Representation restdata.RootData
}

// Refresh re-fetches the root document.
func (c *Client) Refresh() error {
	c.Representation = restdata.RootData{}
	return c.Get(&c.Representation)
}

// DatasetNames lists the names of the datasets the service offers.
func (c *Client) DatasetNames() ([]string, error) {
	resp := restdata.DatasetList{}
	err := c.GetFrom(c.Representation.DatasetsURL, map[string]interface{}{}, &resp)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(resp.Datasets))
	for i, ds := range resp.Datasets {
		names[i] = ds.Name
	}
	return names, nil
}

// Dataset retrieves one dataset by name.
func (c *Client) Dataset(name string) (*Dataset, error) {
	var err error
	ds := &Dataset{}
	ds.URL, err = c.Template(c.Representation.DatasetURL, map[string]interface{}{"dataset": name})
	if err == nil {
		err = ds.Refresh()
	}
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Stac retrieves the root STAC catalog document.
func (c *Client) Stac() (stac.Catalog, error) {
	catalog := stac.Catalog{}
	err := c.GetFrom(c.Representation.StacURL, map[string]interface{}{}, &catalog)
	return catalog, err
}

// Search runs a STAC item search.
func (c *Client) Search(req restdata.SearchRequest) (stac.ItemCollection, error) {
	items := stac.ItemCollection{}
	err := c.PostTo(c.Representation.StacSearchURL, map[string]interface{}{}, req, &items)
	return items, err
}
