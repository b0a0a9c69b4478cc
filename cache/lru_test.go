// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUGetFetches(t *testing.T) {
	l := newLRU(1024)
	fetches := 0
	fetch := func(key string) ([]byte, error) {
		fetches++
		return []byte(key), nil
	}

	data, hit, err := l.Get("a", fetch)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, 1, fetches)

	data, hit, err = l.Get("a", fetch)
	assert.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, 1, fetches)
}

func TestLRUGetError(t *testing.T) {
	l := newLRU(1024)
	oops := errors.New("oops")
	_, _, err := l.Get("a", func(string) ([]byte, error) { return nil, oops })
	assert.Equal(t, oops, err)

	// The failure is not cached.
	_, hit, err := l.Get("a", func(string) ([]byte, error) { return []byte("x"), nil })
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestLRUEvictsByBytes(t *testing.T) {
	l := newLRU(10)
	evictions := 0
	l.evicted = func(n int) { evictions += n }

	l.Put("a", make([]byte, 4))
	l.Put("b", make([]byte, 4))
	assert.Equal(t, int64(8), l.Used())

	// Touch "a" so "b" is the eviction candidate.
	_, hit := l.Peek("a")
	assert.True(t, hit)
	_, _, err := l.Get("a", nil)
	assert.NoError(t, err)

	l.Put("c", make([]byte, 4))
	assert.Equal(t, 1, evictions)
	_, hit = l.Peek("b")
	assert.False(t, hit)
	_, hit = l.Peek("a")
	assert.True(t, hit)
	_, hit = l.Peek("c")
	assert.True(t, hit)
}

func TestLRUOversizeNotStored(t *testing.T) {
	l := newLRU(10)
	l.Put("big", make([]byte, 11))
	_, hit := l.Peek("big")
	assert.False(t, hit)
	assert.Equal(t, int64(0), l.Used())
}

func TestLRURemove(t *testing.T) {
	l := newLRU(10)
	l.Put("a", make([]byte, 4))
	l.Remove("a")
	_, hit := l.Peek("a")
	assert.False(t, hit)
	assert.Equal(t, int64(0), l.Used())
	// Removing twice is harmless.
	l.Remove("a")
}

func TestLRUUpdateInPlace(t *testing.T) {
	l := newLRU(10)
	l.Put("a", make([]byte, 4))
	l.Put("a", make([]byte, 6))
	assert.Equal(t, int64(6), l.Used())
	data, hit := l.Peek("a")
	assert.True(t, hit)
	assert.Len(t, data, 6)
}
