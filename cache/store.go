// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides a caching layer over an object store.  The
// cache wraps some other storage backend; chunk objects, which are
// immutable once written, live in a byte-budget LRU, while metadata
// documents are cached with a time-based expiry so that datasets
// updated in place behind the server are eventually re-read.
//
// Negative results are not cached: a missing chunk stays a store
// round-trip.  Missing chunks are common for sparse arrays, but they
// are also what appears just before a dataset finishes writing, and
// caching them would pin the gap.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gridpub/gridpub/storage"
	"github.com/gridpub/gridpub/zarr"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridpub",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Object cache hits",
		},
		[]string{"kind"},
	)
	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridpub",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Object cache misses",
		},
		[]string{"kind"},
	)
	cacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gridpub",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Chunk cache evictions",
		},
	)
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, cacheEvictions)
}

// DefaultChunkBytes is the default chunk cache budget.
const DefaultChunkBytes = 256 * 1024 * 1024

// DefaultMetaTTL is the default lifetime of cached metadata documents.
const DefaultMetaTTL = time.Minute

type metaEntry struct {
	data    []byte
	expires time.Time
}

type cachingStore struct {
	backend   storage.Store
	chunks    *lru
	metaTTL   time.Duration
	clock     clock.Clock
	metaLock  sync.Mutex
	metadata  map[string]metaEntry
}

// New creates a caching store wrapping some other backend, with the
// default budget and metadata lifetime.
func New(backend storage.Store) storage.Store {
	return NewWithOptions(backend, DefaultChunkBytes, DefaultMetaTTL, clock.New())
}

// NewWithOptions creates a caching store with an explicit chunk byte
// budget, metadata lifetime, and time source.  Tests pass a mock clock.
func NewWithOptions(backend storage.Store, chunkBytes int64, metaTTL time.Duration, clk clock.Clock) storage.Store {
	chunks := newLRU(chunkBytes)
	chunks.evicted = func(n int) { cacheEvictions.Add(float64(n)) }
	return &cachingStore{
		backend:  backend,
		chunks:   chunks,
		metaTTL:  metaTTL,
		clock:    clk,
		metadata: map[string]metaEntry{},
	}
}

// isMetadataKey reports whether a key names a Zarr metadata document
// rather than a chunk object.
func isMetadataKey(key string) bool {
	base := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		base = key[i+1:]
	}
	switch base {
	case zarr.ArrayMetaKey, zarr.GroupMetaKey, zarr.AttrsKey, zarr.ConsolidatedKey:
		return true
	}
	return false
}

func (s *cachingStore) Get(ctx context.Context, key string) ([]byte, error) {
	key = storage.NormalizeKey(key)
	if isMetadataKey(key) {
		return s.getMetadata(ctx, key)
	}
	data, hit, err := s.chunks.Get(key, func(k string) ([]byte, error) {
		return s.backend.Get(ctx, k)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		cacheHits.With(prometheus.Labels{"kind": "chunk"}).Inc()
	} else {
		cacheMisses.With(prometheus.Labels{"kind": "chunk"}).Inc()
	}
	return data, nil
}

func (s *cachingStore) getMetadata(ctx context.Context, key string) ([]byte, error) {
	now := s.clock.Now()

	s.metaLock.Lock()
	entry, present := s.metadata[key]
	s.metaLock.Unlock()
	if present && entry.expires.After(now) {
		cacheHits.With(prometheus.Labels{"kind": "metadata"}).Inc()
		return entry.data, nil
	}

	cacheMisses.With(prometheus.Labels{"kind": "metadata"}).Inc()
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.metaLock.Lock()
	s.metadata[key] = metaEntry{data: data, expires: now.Add(s.metaTTL)}
	s.metaLock.Unlock()
	return data, nil
}

// List always passes through; listings are cheap relative to the cost
// of serving a stale dataset layout.
func (s *cachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.backend.List(ctx, prefix)
}

func (s *cachingStore) Type() string {
	return s.backend.Type()
}
