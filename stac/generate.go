// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package stac

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gridpub/gridpub/grid"
)

// Generator derives a catalog from the datasets a repository serves:
// one collection and one item per dataset, with extents read from the
// CF coordinate variables and assets pointing back at the gridpub API.
type Generator struct {
	// ID, Title, and Description go into the root catalog document.
	ID          string
	Title       string
	Description string

	// License is the license id stamped on generated collections;
	// empty means "proprietary", the STAC placeholder.
	License string

	// BaseURL is the externally visible base URL of the gridpub
	// API, without a trailing slash.  Asset hrefs are relative when
	// it is empty.
	BaseURL string
}

// Catalog builds the root catalog document.
func (g *Generator) Catalog() *Catalog {
	return &Catalog{
		Type:        "Catalog",
		StacVersion: Version,
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Links: []Link{
			{Rel: RelSelf, Href: g.BaseURL + "/stac"},
			{Rel: RelRoot, Href: g.BaseURL + "/stac"},
		},
	}
}

// Populate generates a collection and item for every dataset in the
// repository and upserts them into the index.
func (g *Generator) Populate(ctx context.Context, repo grid.Repository, index Index) error {
	for _, name := range repo.DatasetNames() {
		ds, err := repo.Dataset(name)
		if err != nil {
			return err
		}
		coll, item, err := g.Describe(ctx, ds)
		if err != nil {
			return fmt.Errorf("dataset %v: %v", name, err)
		}
		if err := index.UpsertCollection(ctx, coll); err != nil {
			return err
		}
		if err := index.UpsertItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Describe derives one dataset's collection and item.
func (g *Generator) Describe(ctx context.Context, ds *grid.Dataset) (Collection, Item, error) {
	bbox, err := datasetBbox(ctx, ds)
	if err != nil {
		return Collection{}, Item{}, err
	}
	start, end, err := datasetTimes(ctx, ds)
	if err != nil {
		return Collection{}, Item{}, err
	}

	description := ds.Attrs().StringAttr("summary")
	if description == "" {
		description = "Gridded dataset " + ds.Name()
	}

	datasetURL := g.BaseURL + "/datasets/" + url.PathEscape(ds.Name())
	coll := Collection{
		Type:        "Collection",
		StacVersion: Version,
		ID:          ds.Name(),
		Title:       ds.Attrs().StringAttr("title"),
		Description: description,
		License:     g.License,
		Extent: Extent{
			Spatial:  SpatialExtent{Bbox: [][]float64{bbox}},
			Temporal: TemporalExtent{Interval: [][2]*string{{stampString(start), stampString(end)}}},
		},
		Links: []Link{
			{Rel: RelSelf, Href: g.BaseURL + "/stac/collections/" + url.PathEscape(ds.Name())},
			{Rel: RelRoot, Href: g.BaseURL + "/stac"},
			{Rel: RelItem, Href: g.BaseURL + "/stac/collections/" + url.PathEscape(ds.Name()) + "/items/" + url.PathEscape(ds.Name())},
		},
	}
	if coll.License == "" {
		coll.License = "proprietary"
	}

	properties := map[string]interface{}{
		"gridpub:variables": dataVariables(ds),
	}
	if start != nil && end != nil && start.Equal(*end) {
		properties["datetime"] = *stampString(start)
	} else {
		properties["datetime"] = nil
		if s := stampString(start); s != nil {
			properties["start_datetime"] = *s
		}
		if s := stampString(end); s != nil {
			properties["end_datetime"] = *s
		}
	}

	item := Item{
		Type:        "Feature",
		StacVersion: Version,
		ID:          ds.Name(),
		Collection:  ds.Name(),
		Geometry:    bboxGeometry(bbox),
		Bbox:        bbox,
		Properties:  properties,
		Assets: map[string]Asset{
			"zarr": {
				Href:  datasetURL + "/zarr/.zmetadata",
				Type:  "application/json",
				Title: "Zarr consolidated metadata",
				Roles: []string{"data", "zarr"},
			},
			"query": {
				Href:  datasetURL + "/query",
				Type:  "application/vnd.gridpub.v1+json",
				Title: "gridpub query endpoint",
				Roles: []string{"data"},
			},
		},
		Links: []Link{
			{Rel: RelSelf, Href: g.BaseURL + "/stac/collections/" + url.PathEscape(ds.Name()) + "/items/" + url.PathEscape(ds.Name())},
			{Rel: RelParent, Href: g.BaseURL + "/stac/collections/" + url.PathEscape(ds.Name())},
			{Rel: RelRoot, Href: g.BaseURL + "/stac"},
		},
	}
	return coll, item, nil
}

// datasetBbox reads the X and Y coordinate extents.  A dataset with no
// horizontal axes gets the whole globe, which keeps it searchable.
func datasetBbox(ctx context.Context, ds *grid.Dataset) ([]float64, error) {
	west, east, okX, err := coordExtent(ctx, ds, grid.AxisX)
	if err != nil {
		return nil, err
	}
	south, north, okY, err := coordExtent(ctx, ds, grid.AxisY)
	if err != nil {
		return nil, err
	}
	if !okX || !okY {
		return []float64{-180, -90, 180, 90}, nil
	}
	return []float64{west, south, east, north}, nil
}

func coordExtent(ctx context.Context, ds *grid.Dataset, axis grid.Axis) (float64, float64, bool, error) {
	coord := findAxis(ds, axis)
	if coord == nil {
		return 0, 0, false, nil
	}
	values, err := coord.Values(ctx)
	if err != nil || len(values) == 0 {
		return 0, 0, false, err
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, true, nil
}

func datasetTimes(ctx context.Context, ds *grid.Dataset) (*time.Time, *time.Time, error) {
	coord := findAxis(ds, grid.AxisTime)
	if coord == nil {
		return nil, nil, nil
	}
	stamps, err := coord.TimeValues(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(stamps) == 0 {
		return nil, nil, nil
	}
	start, end := stamps[0], stamps[0]
	for _, s := range stamps[1:] {
		if s.Before(start) {
			start = s
		}
		if s.After(end) {
			end = s
		}
	}
	return &start, &end, nil
}

// findAxis finds the coordinate variable for an axis among all of the
// dataset's dimensions.
func findAxis(ds *grid.Dataset, axis grid.Axis) *grid.Variable {
	for _, name := range ds.VariableNames() {
		coord := ds.Coordinate(name)
		if coord != nil && coord.Axis() == axis {
			return coord
		}
	}
	return nil
}

// dataVariables lists the dataset's non-coordinate variables.
func dataVariables(ds *grid.Dataset) []string {
	var names []string
	for _, name := range ds.VariableNames() {
		if ds.Coordinate(name) == nil {
			names = append(names, name)
		}
	}
	return names
}

func stampString(stamp *time.Time) *string {
	if stamp == nil {
		return nil
	}
	s := stamp.UTC().Format(time.RFC3339)
	return &s
}

// bboxGeometry builds the GeoJSON polygon of a bounding box.
func bboxGeometry(bbox []float64) *Geometry {
	if len(bbox) < 4 {
		return nil
	}
	west, south, east, north := bbox[0], bbox[1], bbox[2], bbox[3]
	return &Geometry{
		Type: "Polygon",
		Coordinates: [][][2]float64{{
			{west, south},
			{east, south},
			{east, north},
			{west, north},
			{west, south},
		}},
	}
}
