// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package stac

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/gridpub/gridpub/storage"
)

// CatalogKey is the conventional root document key of a static
// catalog.
const CatalogKey = "catalog.json"

// Load walks a static catalog stored in an object store, starting from
// the root document at key, and feeds every collection and item it
// finds into the index.  Child and item links with relative hrefs are
// resolved against the document that holds them; absolute URLs are
// skipped, since they point outside the store.
func Load(ctx context.Context, store storage.Store, key string, index Index) (*Catalog, error) {
	if key == "" {
		key = CatalogKey
	}

	var catalog Catalog
	if err := getJSON(ctx, store, key, &catalog); err != nil {
		return nil, err
	}

	for _, link := range catalog.Links {
		if link.Rel != RelChild {
			continue
		}
		collKey, ok := resolveHref(key, link.Href)
		if !ok {
			continue
		}
		var coll Collection
		if err := getJSON(ctx, store, collKey, &coll); err != nil {
			return nil, err
		}
		if err := index.UpsertCollection(ctx, coll); err != nil {
			return nil, err
		}

		for _, link := range coll.Links {
			if link.Rel != RelItem {
				continue
			}
			itemKey, ok := resolveHref(collKey, link.Href)
			if !ok {
				continue
			}
			var item Item
			if err := getJSON(ctx, store, itemKey, &item); err != nil {
				return nil, err
			}
			if item.Collection == "" {
				item.Collection = coll.ID
			}
			if err := index.UpsertItem(ctx, item); err != nil {
				return nil, err
			}
		}
	}
	return &catalog, nil
}

func getJSON(ctx context.Context, store storage.Store, key string, out interface{}) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("catalog document %v: %v", key, err)
	}
	return nil
}

// resolveHref resolves a link href against the key of the document
// holding it.  Returns false for absolute URLs.
func resolveHref(from, href string) (string, bool) {
	if strings.Contains(href, "://") {
		return "", false
	}
	resolved := path.Join(path.Dir(from), href)
	return storage.NormalizeKey(resolved), true
}
