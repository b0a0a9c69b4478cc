// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package storage defines the object store abstraction that Zarr
// hierarchies are read from.  A store is a flat key/value namespace
// with slash-separated keys; implementations exist for process memory,
// a local directory, and Amazon S3.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Store is a read-only view of an object store.  Implementations must
// be safe for concurrent use.
type Store interface {
	// Get returns the complete body of the object at key.  If there
	// is no such object, returns ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns the keys under prefix, in unspecified order.  A
	// prefix of "" lists the whole store.  Listing a prefix with no
	// objects returns an empty slice, not an error.
	List(ctx context.Context, prefix string) ([]string, error)

	// Type returns a short name for the implementation, for
	// diagnostics.
	Type() string
}

// Writer is implemented by stores that can also be written, which the
// in-memory and filesystem stores are.  The server itself never writes;
// this exists for tests and for loading fixtures.
type Writer interface {
	Put(ctx context.Context, key string, data []byte) error
}

// ErrKeyNotFound is returned by Store.Get for absent objects.
type ErrKeyNotFound struct {
	Key string
}

func (err ErrKeyNotFound) Error() string {
	return fmt.Sprintf("No such object %v", err.Key)
}

// IsNotFound reports whether err indicates an absent object.
func IsNotFound(err error) bool {
	_, missing := err.(ErrKeyNotFound)
	return missing
}

// NormalizeKey rewrites a logical key the way the Zarr spec requires:
// backslashes become slashes, leading and trailing slashes are
// stripped, and runs of slashes collapse.
func NormalizeKey(key string) string {
	key = strings.Replace(key, "\\", "/", -1)
	parts := strings.Split(key, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}

// prefixed is a view of another store under a key prefix.
type prefixed struct {
	store  Store
	prefix string
}

// Prefixed returns a view of store rooted at prefix.  Keys passed to
// the view are resolved under the prefix; keys returned from List are
// relative to it.  An empty prefix returns store unchanged.
func Prefixed(store Store, prefix string) Store {
	prefix = NormalizeKey(prefix)
	if prefix == "" {
		return store
	}
	return &prefixed{store: store, prefix: prefix + "/"}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := p.store.Get(ctx, p.prefix+NormalizeKey(key))
	if missing, isMissing := err.(ErrKeyNotFound); isMissing {
		// Report the caller's key, not the resolved one.
		err = ErrKeyNotFound{Key: strings.TrimPrefix(missing.Key, p.prefix)}
	}
	return data, err
}

func (p *prefixed) List(ctx context.Context, prefix string) ([]string, error) {
	full := p.prefix + NormalizeKey(prefix)
	keys, err := p.store.List(ctx, full)
	if err != nil {
		return nil, err
	}
	relative := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, p.prefix) {
			relative = append(relative, strings.TrimPrefix(key, p.prefix))
		}
	}
	sort.Strings(relative)
	return relative, nil
}

func (p *prefixed) Type() string {
	return p.store.Type()
}
