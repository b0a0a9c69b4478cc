// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gridpub/gridpub/storage"
	"github.com/stretchr/testify/assert"
)

// countingStore wraps a fixed object map and counts fetches.
type countingStore struct {
	objects map[string][]byte
	gets    map[string]int
}

func newCountingStore(objects map[string][]byte) *countingStore {
	return &countingStore{objects: objects, gets: map[string]int{}}
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.gets[key]++
	data, present := s.objects[key]
	if !present {
		return nil, storage.ErrKeyNotFound{Key: key}
	}
	return data, nil
}

func (s *countingStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	for key := range s.objects {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *countingStore) Type() string { return "counting" }

func TestChunkCaching(t *testing.T) {
	backend := newCountingStore(map[string][]byte{
		"demo/temp/0.0": []byte("chunk"),
	})
	store := NewWithOptions(backend, 1024, time.Minute, clock.NewMock())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := store.Get(ctx, "demo/temp/0.0")
		if assert.NoError(t, err) {
			assert.Equal(t, "chunk", string(data))
		}
	}
	assert.Equal(t, 1, backend.gets["demo/temp/0.0"])
}

func TestMissingChunkNotCached(t *testing.T) {
	backend := newCountingStore(map[string][]byte{})
	store := NewWithOptions(backend, 1024, time.Minute, clock.NewMock())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := store.Get(ctx, "demo/temp/9.9")
		assert.True(t, storage.IsNotFound(err))
	}
	assert.Equal(t, 2, backend.gets["demo/temp/9.9"])
}

func TestMetadataExpiry(t *testing.T) {
	backend := newCountingStore(map[string][]byte{
		"demo/.zmetadata": []byte("{}"),
	})
	mock := clock.NewMock()
	store := NewWithOptions(backend, 1024, time.Minute, mock)
	ctx := context.Background()

	_, err := store.Get(ctx, "demo/.zmetadata")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "demo/.zmetadata")
	assert.NoError(t, err)
	assert.Equal(t, 1, backend.gets["demo/.zmetadata"])

	// Metadata is re-read after its lifetime passes.
	mock.Add(2 * time.Minute)
	_, err = store.Get(ctx, "demo/.zmetadata")
	assert.NoError(t, err)
	assert.Equal(t, 2, backend.gets["demo/.zmetadata"])
}

func TestIsMetadataKey(t *testing.T) {
	assert.True(t, isMetadataKey("demo/.zmetadata"))
	assert.True(t, isMetadataKey("demo/temp/.zarray"))
	assert.True(t, isMetadataKey(".zgroup"))
	assert.False(t, isMetadataKey("demo/temp/0.0"))
	assert.False(t, isMetadataKey("demo/temp/0"))
}
