// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package stac models a SpatioTemporal Asset Catalog: collections of
// items with spatial and temporal extents, each carrying assets that
// point at the actual data.  gridpub both generates a catalog from the
// datasets it serves and can load a pre-built static catalog out of an
// object store.  Indexes answer the STAC search operation.
package stac

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Version is the STAC specification version the documents declare.
const Version = "1.0.0"

// Link relation types used in gridpub catalogs.
const (
	RelSelf   = "self"
	RelRoot   = "root"
	RelParent = "parent"
	RelChild  = "child"
	RelItem   = "item"
)

// Link connects catalog documents.
type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// Catalog is the root document of a static catalog.
type Catalog struct {
	Type        string `json:"type"`
	StacVersion string `json:"stac_version"`
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

// Collection groups items sharing a spatial and temporal extent.
type Collection struct {
	Type        string `json:"type"`
	StacVersion string `json:"stac_version"`
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	License     string `json:"license"`
	Extent      Extent `json:"extent"`
	Links       []Link `json:"links"`
}

// Extent is a collection's spatial and temporal coverage.
type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`
}

// SpatialExtent holds one or more bounding boxes, each
// [west, south, east, north].
type SpatialExtent struct {
	Bbox [][]float64 `json:"bbox"`
}

// TemporalExtent holds one or more [start, end] intervals as RFC 3339
// timestamps; nil means open-ended.
type TemporalExtent struct {
	Interval [][2]*string `json:"interval"`
}

// Item is one STAC item: a GeoJSON feature with assets.
type Item struct {
	Type        string                 `json:"type"`
	StacVersion string                 `json:"stac_version"`
	ID          string                 `json:"id"`
	Collection  string                 `json:"collection,omitempty"`
	Geometry    *Geometry              `json:"geometry"`
	Bbox        []float64              `json:"bbox,omitempty"`
	Properties  map[string]interface{} `json:"properties"`
	Assets      map[string]Asset       `json:"assets"`
	Links       []Link                 `json:"links"`
}

// Geometry is the GeoJSON geometry of an item.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Asset points at data reachable from an item.
type Asset struct {
	Href  string   `json:"href"`
	Type  string   `json:"type,omitempty"`
	Title string   `json:"title,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// ItemCollection is the result of a search: a GeoJSON feature
// collection of items.
type ItemCollection struct {
	Type     string `json:"type"`
	Features []Item `json:"features"`
	Links    []Link `json:"links,omitempty"`
}

// ItemTimes is the typed view of an item's temporal properties.
type ItemTimes struct {
	// Datetime is the item's single timestamp, if it has one.
	Datetime *time.Time

	// Start and End bound the item's interval, if it has one.
	Start *time.Time
	End   *time.Time
}

// itemTimeProperties matches the raw property names; timestamps stay
// strings through mapstructure and parse separately.
type itemTimeProperties struct {
	Datetime      *string `mapstructure:"datetime"`
	StartDatetime *string `mapstructure:"start_datetime"`
	EndDatetime   *string `mapstructure:"end_datetime"`
}

// Times extracts the item's temporal properties.  STAC requires either
// "datetime" or the "start_datetime"/"end_datetime" pair; an item with
// neither returns the zero ItemTimes.
func (item *Item) Times() (ItemTimes, error) {
	var raw itemTimeProperties
	if err := mapstructure.Decode(item.Properties, &raw); err != nil {
		return ItemTimes{}, err
	}
	var times ItemTimes
	var err error
	if times.Datetime, err = parseStamp(raw.Datetime); err != nil {
		return ItemTimes{}, err
	}
	if times.Start, err = parseStamp(raw.StartDatetime); err != nil {
		return ItemTimes{}, err
	}
	if times.End, err = parseStamp(raw.EndDatetime); err != nil {
		return ItemTimes{}, err
	}
	return times, nil
}

func parseStamp(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	stamp, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	stamp = stamp.UTC()
	return &stamp, nil
}

// Search is the STAC item search operation's parameters.
type Search struct {
	// Collections restricts results to these collection ids; empty
	// means all collections.
	Collections []string `json:"collections,omitempty"`

	// Bbox restricts results to items intersecting
	// [west, south, east, north].
	Bbox []float64 `json:"bbox,omitempty"`

	// Start and End restrict results to items whose time overlaps
	// the interval; a nil bound is unbounded.
	Start *time.Time `json:"-"`
	End   *time.Time `json:"-"`

	// Limit caps the number of items returned; zero means
	// DefaultLimit.
	Limit int `json:"limit,omitempty"`
}

// DefaultLimit is the search result cap when a search sets none.
const DefaultLimit = 100

// Index stores and searches a catalog's collections and items.
type Index interface {
	// Collections lists all collections, ordered by id.
	Collections(ctx context.Context) ([]Collection, error)

	// Collection retrieves one collection by id.
	Collection(ctx context.Context, id string) (*Collection, error)

	// Items searches items, ordered by id.
	Items(ctx context.Context, search Search) ([]Item, error)

	// Item retrieves one item by id.
	Item(ctx context.Context, id string) (*Item, error)

	// UpsertCollection inserts or replaces a collection.
	UpsertCollection(ctx context.Context, coll Collection) error

	// UpsertItem inserts or replaces an item.
	UpsertItem(ctx context.Context, item Item) error
}

// BboxIntersects reports whether two [west, south, east, north] boxes
// overlap.  A box shorter than four values never matches.
func BboxIntersects(a, b []float64) bool {
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	return a[0] <= b[2] && b[0] <= a[2] && a[1] <= b[3] && b[1] <= a[3]
}

// TimesOverlap reports whether the item interval [start, end] overlaps
// the search interval [lo, hi].  Nil bounds are unbounded; an item
// with no temporal properties matches any interval.
func TimesOverlap(times ItemTimes, lo, hi *time.Time) bool {
	start, end := times.Start, times.End
	if times.Datetime != nil {
		start, end = times.Datetime, times.Datetime
	}
	if start == nil && end == nil {
		return true
	}
	if hi != nil && start != nil && start.After(*hi) {
		return false
	}
	if lo != nil && end != nil && end.Before(*lo) {
		return false
	}
	return true
}
