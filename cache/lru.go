// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package cache

// This file provides a simple LRU cache with byte-size accounting.
// Chunk objects vary from a few bytes of coordinate data to multiple
// megabytes of compressed values, so a fixed entry count is a poor
// budget; eviction is by total stored bytes instead.

import (
	"container/list"
	"sync"
)

type entry struct {
	key  string
	data []byte
}

// lru is a least-recently-used byte cache with a fixed byte capacity.
// The cache can be safely accessed from multiple goroutines.
type lru struct {
	capacity  int64
	used      int64
	lock      sync.RWMutex
	evictList *list.List
	index     map[string]*list.Element
	evicted   func(n int)
}

func newLRU(capacity int64) *lru {
	return &lru{
		capacity:  capacity,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves an item from the cache.  If it is not present, calls
// the fetch function, and if that succeeds, saves the item and returns
// it.  This returns an error only if the item is not present and the
// fetch function returns an error.
func (lru *lru) Get(key string, fetch func(string) ([]byte, error)) ([]byte, bool, error) {
	// This sadly happens under a writer lock, since we need to move
	// the item to the back of the list if it is present
	lru.lock.Lock()
	if element, present := lru.index[key]; present {
		lru.evictList.MoveToBack(element)
		data := element.Value.(*entry).data
		lru.lock.Unlock()
		return data, true, nil
	}
	lru.lock.Unlock()

	// Fetch outside the lock; concurrent misses on the same key may
	// fetch twice, which is harmless for an immutable store.
	data, err := fetch(key)
	if err != nil {
		return nil, false, err
	}
	lru.Put(key, data)
	return data, false, nil
}

// Peek looks for an item in the cache and returns it if present.  This
// runs under a reader lock and does not affect the recency of the item.
func (lru *lru) Peek(key string) ([]byte, bool) {
	lru.lock.RLock()
	defer lru.lock.RUnlock()

	if element, present := lru.index[key]; present {
		return element.Value.(*entry).data, true
	}
	return nil, false
}

// Put adds an item to the cache, possibly evicting older items.  Items
// larger than the whole capacity are not stored.
func (lru *lru) Put(key string, data []byte) {
	if int64(len(data)) > lru.capacity {
		return
	}

	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		old := element.Value.(*entry)
		lru.used += int64(len(data)) - int64(len(old.data))
		old.data = data
		lru.evictList.MoveToBack(element)
	} else {
		element := lru.evictList.PushBack(&entry{key: key, data: data})
		lru.index[key] = element
		lru.used += int64(len(data))
	}

	evictions := 0
	for lru.used > lru.capacity {
		head := lru.evictList.Front()
		item := head.Value.(*entry)
		delete(lru.index, item.key)
		lru.evictList.Remove(head)
		lru.used -= int64(len(item.data))
		evictions++
	}
	if evictions > 0 && lru.evicted != nil {
		lru.evicted(evictions)
	}
}

// Remove takes an item out of the cache.  It does nothing if that key
// does not exist.
func (lru *lru) Remove(key string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		lru.used -= int64(len(element.Value.(*entry).data))
		delete(lru.index, key)
		lru.evictList.Remove(element)
	}
}

// Used returns the number of bytes currently stored.
func (lru *lru) Used() int64 {
	lru.lock.RLock()
	defer lru.lock.RUnlock()
	return lru.used
}
