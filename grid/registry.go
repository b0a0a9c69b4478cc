// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package grid

import (
	"context"
	"sort"
	"sync"

	"github.com/gridpub/gridpub/storage"
)

// Repository is the read interface the REST layer sees: a set of
// mounted datasets addressable by name.
type Repository interface {
	// Dataset looks up one mounted dataset by name.
	Dataset(name string) (*Dataset, error)

	// DatasetNames lists the mounted dataset names, sorted.
	DatasetNames() []string
}

// Mount names one dataset to serve and where its hierarchy lives
// within the store.
type Mount struct {
	// Name is the name the dataset is served under.
	Name string `yaml:"name" json:"name"`

	// Prefix is the key prefix of the Zarr hierarchy within the
	// object store.  Empty means the store root.
	Prefix string `yaml:"prefix" json:"prefix"`
}

// Registry is the standard Repository: an in-memory table of mounted
// datasets.  It is safe for concurrent use.
type Registry struct {
	lock     sync.RWMutex
	datasets map[string]*Dataset
}

var _ Repository = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{datasets: map[string]*Dataset{}}
}

// OpenMounts opens every mount against the store and returns a
// registry serving them.  Opening stops at the first failing mount;
// serving a partial catalog silently would hide broken data.
func OpenMounts(ctx context.Context, store storage.Store, mounts []Mount) (*Registry, error) {
	r := NewRegistry()
	for _, mount := range mounts {
		ds, err := Open(ctx, storage.Prefixed(store, mount.Prefix), mount.Name)
		if err != nil {
			return nil, err
		}
		r.Add(ds)
	}
	return r, nil
}

// Add mounts a dataset, replacing any existing dataset of the same
// name.
func (r *Registry) Add(ds *Dataset) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.datasets[ds.Name()] = ds
}

// Dataset looks up one mounted dataset by name.
func (r *Registry) Dataset(name string) (*Dataset, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	ds, present := r.datasets[name]
	if !present {
		return nil, ErrNoSuchDataset{Name: name}
	}
	return ds, nil
}

// DatasetNames lists the mounted dataset names, sorted.
func (r *Registry) DatasetNames() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	names := make([]string, 0, len(r.datasets))
	for name := range r.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
