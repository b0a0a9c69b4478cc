// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package indextest provides a gocheck test suite that a stac.Index
// implementation must pass.  Backend packages embed the suite and
// provide a factory for a fresh, empty index.
package indextest

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/check.v1"

	"github.com/gridpub/gridpub/stac"
)

// Suite is the conformance test suite.  Register it with gocheck,
// filling in NewIndex.
type Suite struct {
	// NewIndex creates a fresh, empty index for one test.
	NewIndex func() (stac.Index, error)

	index stac.Index
	ctx   context.Context
}

// SetUpTest creates the per-test index.
func (s *Suite) SetUpTest(c *check.C) {
	index, err := s.NewIndex()
	c.Assert(err, check.IsNil)
	s.index = index
	s.ctx = context.Background()
}

func collection(id string, bbox []float64) stac.Collection {
	return stac.Collection{
		Type:        "Collection",
		StacVersion: stac.Version,
		ID:          id,
		Description: "test collection " + id,
		License:     "proprietary",
		Extent: stac.Extent{
			Spatial: stac.SpatialExtent{Bbox: [][]float64{bbox}},
		},
	}
}

func item(id, coll string, bbox []float64, stamp string) stac.Item {
	properties := map[string]interface{}{}
	if stamp != "" {
		properties["datetime"] = stamp
	}
	return stac.Item{
		Type:        "Feature",
		StacVersion: stac.Version,
		ID:          id,
		Collection:  coll,
		Bbox:        bbox,
		Properties:  properties,
		Assets: map[string]stac.Asset{
			"data": {Href: fmt.Sprintf("https://example.com/%v", id)},
		},
	}
}

func (s *Suite) TestCollectionsEmpty(c *check.C) {
	colls, err := s.index.Collections(s.ctx)
	c.Assert(err, check.IsNil)
	c.Check(colls, check.HasLen, 0)

	_, err = s.index.Collection(s.ctx, "absent")
	c.Check(err, check.DeepEquals, stac.ErrNoSuchCollection{ID: "absent"})
}

func (s *Suite) TestCollectionRoundTrip(c *check.C) {
	coll := collection("era", []float64{-10, 40, 10, 60})
	c.Assert(s.index.UpsertCollection(s.ctx, coll), check.IsNil)

	got, err := s.index.Collection(s.ctx, "era")
	c.Assert(err, check.IsNil)
	c.Check(got.Description, check.Equals, "test collection era")
	c.Check(got.Extent.Spatial.Bbox, check.DeepEquals, [][]float64{{-10, 40, 10, 60}})

	coll.Description = "replaced"
	c.Assert(s.index.UpsertCollection(s.ctx, coll), check.IsNil)
	got, err = s.index.Collection(s.ctx, "era")
	c.Assert(err, check.IsNil)
	c.Check(got.Description, check.Equals, "replaced")

	colls, err := s.index.Collections(s.ctx)
	c.Assert(err, check.IsNil)
	c.Check(colls, check.HasLen, 1)
}

func (s *Suite) TestCollectionsSorted(c *check.C) {
	for _, id := range []string{"zulu", "alpha", "mike"} {
		c.Assert(s.index.UpsertCollection(s.ctx, collection(id, nil)), check.IsNil)
	}
	colls, err := s.index.Collections(s.ctx)
	c.Assert(err, check.IsNil)
	c.Assert(colls, check.HasLen, 3)
	c.Check(colls[0].ID, check.Equals, "alpha")
	c.Check(colls[1].ID, check.Equals, "mike")
	c.Check(colls[2].ID, check.Equals, "zulu")
}

func (s *Suite) TestItemRoundTrip(c *check.C) {
	_, err := s.index.Item(s.ctx, "absent")
	c.Check(err, check.DeepEquals, stac.ErrNoSuchItem{ID: "absent"})

	it := item("scene-1", "era", []float64{0, 0, 10, 10}, "2021-06-01T00:00:00Z")
	c.Assert(s.index.UpsertItem(s.ctx, it), check.IsNil)

	got, err := s.index.Item(s.ctx, "scene-1")
	c.Assert(err, check.IsNil)
	c.Check(got.Collection, check.Equals, "era")
	c.Check(got.Bbox, check.DeepEquals, []float64{0, 0, 10, 10})
	c.Check(got.Assets["data"].Href, check.Equals, "https://example.com/scene-1")

	times, err := got.Times()
	c.Assert(err, check.IsNil)
	c.Assert(times.Datetime, check.NotNil)
	c.Check(times.Datetime.Equal(time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)), check.Equals, true)
}

func (s *Suite) populate(c *check.C) {
	items := []stac.Item{
		item("a-1", "alpha", []float64{0, 0, 10, 10}, "2021-01-15T00:00:00Z"),
		item("a-2", "alpha", []float64{20, 20, 30, 30}, "2021-06-15T00:00:00Z"),
		item("b-1", "beta", []float64{5, 5, 15, 15}, "2021-03-15T00:00:00Z"),
		item("b-2", "beta", []float64{-50, -50, -40, -40}, ""),
	}
	for _, it := range items {
		c.Assert(s.index.UpsertItem(s.ctx, it), check.IsNil)
	}
}

func (s *Suite) TestSearchAll(c *check.C) {
	s.populate(c)
	items, err := s.index.Items(s.ctx, stac.Search{})
	c.Assert(err, check.IsNil)
	c.Assert(items, check.HasLen, 4)
	c.Check(items[0].ID, check.Equals, "a-1")
	c.Check(items[3].ID, check.Equals, "b-2")
}

func (s *Suite) TestSearchCollections(c *check.C) {
	s.populate(c)
	items, err := s.index.Items(s.ctx, stac.Search{Collections: []string{"beta"}})
	c.Assert(err, check.IsNil)
	c.Assert(items, check.HasLen, 2)
	c.Check(items[0].ID, check.Equals, "b-1")
	c.Check(items[1].ID, check.Equals, "b-2")

	items, err = s.index.Items(s.ctx, stac.Search{Collections: []string{"gamma"}})
	c.Assert(err, check.IsNil)
	c.Check(items, check.HasLen, 0)
}

func (s *Suite) TestSearchBbox(c *check.C) {
	s.populate(c)
	items, err := s.index.Items(s.ctx, stac.Search{Bbox: []float64{8, 8, 12, 12}})
	c.Assert(err, check.IsNil)
	c.Assert(items, check.HasLen, 2)
	c.Check(items[0].ID, check.Equals, "a-1")
	c.Check(items[1].ID, check.Equals, "b-1")

	// Touching edges intersect.
	items, err = s.index.Items(s.ctx, stac.Search{Bbox: []float64{10, 10, 11, 11}})
	c.Assert(err, check.IsNil)
	c.Assert(items, check.HasLen, 2)

	items, err = s.index.Items(s.ctx, stac.Search{Bbox: []float64{100, 100, 110, 110}})
	c.Assert(err, check.IsNil)
	c.Check(items, check.HasLen, 0)
}

func (s *Suite) TestSearchTime(c *check.C) {
	s.populate(c)
	start := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)

	// b-2 has no temporal properties and matches any interval.
	items, err := s.index.Items(s.ctx, stac.Search{Start: &start, End: &end})
	c.Assert(err, check.IsNil)
	c.Assert(items, check.HasLen, 2)
	c.Check(items[0].ID, check.Equals, "b-1")
	c.Check(items[1].ID, check.Equals, "b-2")

	items, err = s.index.Items(s.ctx, stac.Search{Start: &start})
	c.Assert(err, check.IsNil)
	c.Assert(items, check.HasLen, 3)

	items, err = s.index.Items(s.ctx, stac.Search{End: &start})
	c.Assert(err, check.IsNil)
	c.Assert(items, check.HasLen, 2)
	c.Check(items[0].ID, check.Equals, "a-1")
}

func (s *Suite) TestSearchLimit(c *check.C) {
	s.populate(c)
	items, err := s.index.Items(s.ctx, stac.Search{Limit: 2})
	c.Assert(err, check.IsNil)
	c.Assert(items, check.HasLen, 2)
	c.Check(items[0].ID, check.Equals, "a-1")
	c.Check(items[1].ID, check.Equals, "a-2")
}
