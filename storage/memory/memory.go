// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-memory object store.  It is intended
// for tests and demos; every served byte lives on the heap.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gridpub/gridpub/storage"
)

type memStore struct {
	lock sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory store.
func New() storage.Store {
	return &memStore{data: map[string][]byte{}}
}

// NewWithObjects creates an in-memory store preloaded with the given
// objects.  The map values are copied.
func NewWithObjects(objects map[string][]byte) storage.Store {
	s := &memStore{data: map[string][]byte{}}
	for key, data := range objects {
		s.put(key, data)
	}
	return s
}

func (s *memStore) Type() string { return "memory" }

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	key = storage.NormalizeKey(key)
	s.lock.RLock()
	defer s.lock.RUnlock()
	data, present := s.data[key]
	if !present {
		return nil, storage.ErrKeyNotFound{Key: key}
	}
	// Copy so callers cannot mutate the stored object.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *memStore) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = storage.NormalizeKey(prefix)
	if prefix != "" {
		prefix += "/"
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	keys := []string{}
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memStore) Put(ctx context.Context, key string, data []byte) error {
	s.put(key, data)
	return nil
}

func (s *memStore) put(key string, data []byte) {
	stored := make([]byte, len(data))
	copy(stored, data)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.data[storage.NormalizeKey(key)] = stored
}
