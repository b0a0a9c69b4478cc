// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package stac

import (
	"context"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory Index, the default when no database is
// configured.  It is safe for concurrent use.
type MemoryIndex struct {
	lock        sync.RWMutex
	collections map[string]Collection
	items       map[string]Item
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		collections: map[string]Collection{},
		items:       map[string]Item{},
	}
}

// Collections lists all collections, ordered by id.
func (idx *MemoryIndex) Collections(ctx context.Context) ([]Collection, error) {
	idx.lock.RLock()
	defer idx.lock.RUnlock()
	out := make([]Collection, 0, len(idx.collections))
	for _, coll := range idx.collections {
		out = append(out, coll)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Collection retrieves one collection by id.
func (idx *MemoryIndex) Collection(ctx context.Context, id string) (*Collection, error) {
	idx.lock.RLock()
	defer idx.lock.RUnlock()
	coll, present := idx.collections[id]
	if !present {
		return nil, ErrNoSuchCollection{ID: id}
	}
	return &coll, nil
}

// Items searches items, ordered by id.
func (idx *MemoryIndex) Items(ctx context.Context, search Search) ([]Item, error) {
	limit := search.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var wanted map[string]struct{}
	if len(search.Collections) > 0 {
		wanted = map[string]struct{}{}
		for _, id := range search.Collections {
			wanted[id] = struct{}{}
		}
	}

	idx.lock.RLock()
	defer idx.lock.RUnlock()
	matched := make([]Item, 0, len(idx.items))
	for _, item := range idx.items {
		if wanted != nil {
			if _, ok := wanted[item.Collection]; !ok {
				continue
			}
		}
		if len(search.Bbox) >= 4 && !BboxIntersects(item.Bbox, search.Bbox) {
			continue
		}
		if search.Start != nil || search.End != nil {
			times, err := item.Times()
			if err != nil {
				return nil, err
			}
			if !TimesOverlap(times, search.Start, search.End) {
				continue
			}
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Item retrieves one item by id.
func (idx *MemoryIndex) Item(ctx context.Context, id string) (*Item, error) {
	idx.lock.RLock()
	defer idx.lock.RUnlock()
	item, present := idx.items[id]
	if !present {
		return nil, ErrNoSuchItem{ID: id}
	}
	return &item, nil
}

// UpsertCollection inserts or replaces a collection.
func (idx *MemoryIndex) UpsertCollection(ctx context.Context, coll Collection) error {
	idx.lock.Lock()
	defer idx.lock.Unlock()
	idx.collections[coll.ID] = coll
	return nil
}

// UpsertItem inserts or replaces an item.
func (idx *MemoryIndex) UpsertItem(ctx context.Context, item Item) error {
	idx.lock.Lock()
	defer idx.lock.Unlock()
	idx.items[item.ID] = item
	return nil
}
