// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package grid models the gridded datasets gridpub serves.  A dataset
// is a Zarr hierarchy in some object store: a group of named variables
// (arrays) with named dimensions, plus attributes following the CF and
// xarray conventions.  The package reads dataset layouts from storage
// and gives higher layers (the query planner, the REST server, the
// STAC generator) a typed view of them.
package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gridpub/gridpub/storage"
	"github.com/gridpub/gridpub/zarr"
)

// Dataset is one mounted gridded dataset.
type Dataset struct {
	name  string
	store storage.Store
	attrs zarr.Attrs
	vars  map[string]*Variable
}

// Variable is one array within a dataset.
type Variable struct {
	name    string
	dataset *Dataset
	meta    *zarr.ArrayMeta
	attrs   zarr.Attrs
	dims    []string
}

// Open reads the layout of the dataset stored under store's root.  It
// prefers consolidated metadata (".zmetadata") and falls back to
// walking the hierarchy when there is none.  name is the name the
// dataset is served under; it does not affect which keys are read.
func Open(ctx context.Context, store storage.Store, name string) (*Dataset, error) {
	ds := &Dataset{
		name:  name,
		store: store,
		attrs: zarr.Attrs{},
		vars:  map[string]*Variable{},
	}

	raw, err := store.Get(ctx, zarr.ConsolidatedKey)
	if err == nil {
		return ds, ds.openConsolidated(raw)
	}
	if !storage.IsNotFound(err) {
		return nil, err
	}
	return ds, ds.openWalking(ctx)
}

func (ds *Dataset) openConsolidated(raw []byte) error {
	var cm zarr.ConsolidatedMetadata
	if err := json.Unmarshal(raw, &cm); err != nil {
		return fmt.Errorf("dataset %v: reading consolidated metadata: %v", ds.name, err)
	}

	attrs, err := cm.Attrs("")
	if err != nil {
		return err
	}
	ds.attrs = attrs

	for _, array := range cm.Arrays() {
		meta, err := cm.ArrayMeta(array)
		if err != nil {
			return err
		}
		attrs, err := cm.Attrs(array)
		if err != nil {
			return err
		}
		if err := ds.addVariable(array, meta, attrs); err != nil {
			return err
		}
	}
	return nil
}

func (ds *Dataset) openWalking(ctx context.Context) error {
	// Root group and attributes.  A missing .zgroup means this is
	// not a Zarr hierarchy at all, which deserves a clear error.
	raw, err := ds.store.Get(ctx, zarr.GroupMetaKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return ErrNotZarr{Name: ds.name}
		}
		return err
	}
	var group zarr.GroupMeta
	if err := json.Unmarshal(raw, &group); err != nil {
		return fmt.Errorf("dataset %v: reading group metadata: %v", ds.name, err)
	}
	if group.ZarrFormat != zarr.Format {
		return zarr.ErrBadFormat{Version: group.ZarrFormat}
	}

	if raw, err := ds.store.Get(ctx, zarr.AttrsKey); err == nil {
		if err := json.Unmarshal(raw, &ds.attrs); err != nil {
			return fmt.Errorf("dataset %v: reading attributes: %v", ds.name, err)
		}
	} else if !storage.IsNotFound(err) {
		return err
	}

	keys, err := ds.store.List(ctx, "")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+zarr.ArrayMetaKey) {
			continue
		}
		array := strings.TrimSuffix(key, "/"+zarr.ArrayMetaKey)

		raw, err := ds.store.Get(ctx, key)
		if err != nil {
			return err
		}
		meta := &zarr.ArrayMeta{}
		if err := json.Unmarshal(raw, meta); err != nil {
			return fmt.Errorf("dataset %v: reading %v: %v", ds.name, key, err)
		}

		attrs := zarr.Attrs{}
		if raw, err := ds.store.Get(ctx, array+"/"+zarr.AttrsKey); err == nil {
			if err := json.Unmarshal(raw, &attrs); err != nil {
				return fmt.Errorf("dataset %v: reading %v attributes: %v", ds.name, array, err)
			}
		} else if !storage.IsNotFound(err) {
			return err
		}

		if err := ds.addVariable(array, meta, attrs); err != nil {
			return err
		}
	}
	return nil
}

func (ds *Dataset) addVariable(name string, meta *zarr.ArrayMeta, attrs zarr.Attrs) error {
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("dataset %v, variable %v: %v", ds.name, name, err)
	}
	dims := attrs.Dimensions()
	if len(dims) != len(meta.Shape) {
		// Plain Zarr without the xarray convention; synthesize
		// positional dimension names so the query layer still
		// has something to address.
		dims = make([]string, len(meta.Shape))
		for i := range dims {
			dims[i] = fmt.Sprintf("dim_%d", i)
		}
	}
	ds.vars[name] = &Variable{
		name:    name,
		dataset: ds,
		meta:    meta,
		attrs:   attrs,
		dims:    dims,
	}
	return nil
}

// Name returns the name the dataset is served under.
func (ds *Dataset) Name() string { return ds.name }

// Attrs returns the dataset's root attributes.
func (ds *Dataset) Attrs() zarr.Attrs { return ds.attrs }

// Store returns the object store view the dataset reads from.
func (ds *Dataset) Store() storage.Store { return ds.store }

// Variable looks up one variable by name.
func (ds *Dataset) Variable(name string) (*Variable, error) {
	v, present := ds.vars[name]
	if !present {
		return nil, ErrNoSuchVariable{Dataset: ds.name, Name: name}
	}
	return v, nil
}

// VariableNames returns the names of all variables, sorted.
func (ds *Dataset) VariableNames() []string {
	names := make([]string, 0, len(ds.vars))
	for name := range ds.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Coordinate returns the coordinate variable for a dimension: the
// variable with the dimension's own name, one-dimensional over it.
// Returns nil if the dataset has no such variable.
func (ds *Dataset) Coordinate(dim string) *Variable {
	v, present := ds.vars[dim]
	if !present {
		return nil
	}
	if len(v.dims) != 1 || v.dims[0] != dim {
		return nil
	}
	return v
}

// Name returns the variable's name.
func (v *Variable) Name() string { return v.name }

// Dataset returns the dataset the variable belongs to.
func (v *Variable) Dataset() *Dataset { return v.dataset }

// Meta returns the variable's array metadata.
func (v *Variable) Meta() *zarr.ArrayMeta { return v.meta }

// Attrs returns the variable's attributes.
func (v *Variable) Attrs() zarr.Attrs { return v.attrs }

// Dims returns the variable's dimension names, parallel to its shape.
func (v *Variable) Dims() []string { return v.dims }

// ChunkRaw returns the stored bytes of one chunk object, still
// compressed.  Missing chunks return storage.ErrKeyNotFound; the chunk
// HTTP endpoint passes that through as 404, which Zarr clients handle
// by filling.
func (v *Variable) ChunkRaw(ctx context.Context, key string) ([]byte, error) {
	if _, err := zarr.ParseChunkKey(key, v.meta.Separator(), len(v.meta.Shape)); err != nil {
		return nil, ErrBadChunkKey{Key: key, Err: err}
	}
	return v.dataset.store.Get(ctx, v.name+"/"+key)
}

// Chunk fetches, decompresses, and decodes one chunk into float64
// values in C order, always the full chunk shape.  A missing chunk
// object materializes as fill_value.
func (v *Variable) Chunk(ctx context.Context, indices []int) ([]float64, error) {
	if !v.meta.ValidChunk(indices) {
		return nil, ErrBadChunkKey{Key: zarr.ChunkKey(indices, v.meta.Separator())}
	}
	key := v.name + "/" + zarr.ChunkKey(indices, v.meta.Separator())
	raw, err := v.dataset.store.Get(ctx, key)
	if storage.IsNotFound(err) {
		fill := zarr.FillValueFloat(v.meta.FillValue)
		values := make([]float64, v.meta.ChunkElements())
		for i := range values {
			values[i] = fill
		}
		return values, nil
	}
	if err != nil {
		return nil, err
	}

	body, err := zarr.Decompress(v.meta.Compressor, raw)
	if err != nil {
		return nil, err
	}
	values, err := zarr.DecodeValues(v.meta.Dtype, body)
	if err != nil {
		return nil, err
	}
	if len(values) != v.meta.ChunkElements() {
		return nil, fmt.Errorf("chunk %v has %v elements, want %v",
			key, len(values), v.meta.ChunkElements())
	}
	return values, nil
}

// Values reads an entire one-dimensional variable.  This is how
// coordinate variables (time, latitude, longitude) are loaded for
// value-space query translation; they are small relative to data
// variables.
func (v *Variable) Values(ctx context.Context) ([]float64, error) {
	if len(v.meta.Shape) != 1 {
		return nil, fmt.Errorf("variable %v has %v dimensions, want 1",
			v.name, len(v.meta.Shape))
	}
	length := v.meta.Shape[0]
	out := make([]float64, 0, length)
	for idx := 0; idx < v.meta.GridShape()[0]; idx++ {
		values, err := v.Chunk(ctx, []int{idx})
		if err != nil {
			return nil, err
		}
		valid := v.meta.ChunkShapeAt([]int{idx})[0]
		out = append(out, values[:valid]...)
	}
	return out, nil
}
