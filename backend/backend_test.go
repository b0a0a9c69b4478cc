// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	var b Backend

	err := b.Set("memory")
	if assert.NoError(t, err) {
		assert.Equal(t, "memory", b.Implementation)
		assert.Equal(t, "", b.Address)
		assert.Equal(t, "memory", b.String())
	}

	err = b.Set("file:/data/zarr")
	if assert.NoError(t, err) {
		assert.Equal(t, "file", b.Implementation)
		assert.Equal(t, "/data/zarr", b.Address)
		assert.Equal(t, "file:/data/zarr", b.String())
	}

	err = b.Set("s3:mybucket/prefix@us-west-2")
	if assert.NoError(t, err) {
		assert.Equal(t, "s3", b.Implementation)
		assert.Equal(t, "mybucket/prefix@us-west-2", b.Address)
	}

	err = b.Set("cassandra:whatever")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	b := Backend{Implementation: "memory"}
	store, err := b.Store()
	if assert.NoError(t, err) {
		assert.Equal(t, "memory", store.Type())
	}
}

func TestFileStoreRequiresRoot(t *testing.T) {
	b := Backend{Implementation: "file"}
	_, err := b.Store()
	assert.Error(t, err)
}
