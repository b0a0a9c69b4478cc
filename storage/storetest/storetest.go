// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package storetest provides generic functional tests for the storage
// Store interface.  A typical backend test module wraps Suite to
// create its store:
//
//     package mybackend
//
//     import (
//             "testing"
//             "github.com/gridpub/gridpub/storage/storetest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     type Suite struct {
//             storetest.Suite
//     }
//
//     func (s *Suite) SetupTest() {
//             s.Store = New()
//     }
//
//     func TestStore(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
package storetest

import (
	"context"

	"github.com/gridpub/gridpub/storage"
	"github.com/stretchr/testify/suite"
)

// Suite is the generic store backend test suite.  The store under test
// must also implement storage.Writer.
type Suite struct {
	suite.Suite

	// Store contains the store under test.  It is set by importing
	// packages, and must be empty at the start of each test.
	Store storage.Store
}

func (s *Suite) put(key string, body string) {
	writer, canWrite := s.Store.(storage.Writer)
	s.Require().True(canWrite, "store under test must implement storage.Writer")
	err := writer.Put(context.Background(), key, []byte(body))
	s.Require().NoError(err)
}

// TestGetAbsent verifies the typed not-found error.
func (s *Suite) TestGetAbsent() {
	_, err := s.Store.Get(context.Background(), "no/such/key")
	s.Equal(storage.ErrKeyNotFound{Key: "no/such/key"}, err)
	s.True(storage.IsNotFound(err))
}

// TestPutGet stores an object and reads it back.
func (s *Suite) TestPutGet() {
	s.put("demo/.zgroup", `{"zarr_format": 2}`)
	data, err := s.Store.Get(context.Background(), "demo/.zgroup")
	if s.NoError(err) {
		s.Equal(`{"zarr_format": 2}`, string(data))
	}
}

// TestKeyNormalization verifies that sloppy keys resolve to the same
// object as their normalized forms.
func (s *Suite) TestKeyNormalization() {
	s.put("demo/temp/0.0", "chunk")
	for _, key := range []string{
		"demo/temp/0.0",
		"/demo/temp/0.0",
		"demo//temp/0.0",
		"demo/temp/0.0/",
	} {
		data, err := s.Store.Get(context.Background(), key)
		if s.NoError(err, "key %q", key) {
			s.Equal("chunk", string(data), "key %q", key)
		}
	}
}

// TestList verifies prefix listing.
func (s *Suite) TestList() {
	s.put("a/.zgroup", "{}")
	s.put("a/t/.zarray", "{}")
	s.put("a/t/0", "x")
	s.put("b/.zgroup", "{}")

	keys, err := s.Store.List(context.Background(), "a")
	if s.NoError(err) {
		s.ElementsMatch([]string{"a/.zgroup", "a/t/.zarray", "a/t/0"}, keys)
	}

	keys, err = s.Store.List(context.Background(), "a/t")
	if s.NoError(err) {
		s.ElementsMatch([]string{"a/t/.zarray", "a/t/0"}, keys)
	}

	keys, err = s.Store.List(context.Background(), "missing")
	if s.NoError(err) {
		s.Empty(keys)
	}
}

// TestPrefixed verifies the prefix view over the store under test.
func (s *Suite) TestPrefixed() {
	s.put("mount/demo/.zgroup", "{}")
	s.put("mount/demo/t/0", "x")
	s.put("other/.zgroup", "{}")

	view := storage.Prefixed(s.Store, "mount/demo")
	data, err := view.Get(context.Background(), ".zgroup")
	if s.NoError(err) {
		s.Equal("{}", string(data))
	}

	_, err = view.Get(context.Background(), "absent")
	s.Equal(storage.ErrKeyNotFound{Key: "absent"}, err)

	keys, err := view.List(context.Background(), "")
	if s.NoError(err) {
		s.ElementsMatch([]string{".zgroup", "t/0"}, keys)
	}
}
