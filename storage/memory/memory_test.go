// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"testing"

	"github.com/gridpub/gridpub/storage/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type Suite struct {
	storetest.Suite
}

func (s *Suite) SetupTest() {
	s.Store = New()
}

func TestStore(t *testing.T) {
	suite.Run(t, &Suite{})
}

func TestNewWithObjects(t *testing.T) {
	s := NewWithObjects(map[string][]byte{
		"demo/.zgroup": []byte("{}"),
	})
	data, err := s.Get(context.Background(), "demo/.zgroup")
	if assert.NoError(t, err) {
		assert.Equal(t, "{}", string(data))
	}
}

func TestGetCopies(t *testing.T) {
	s := NewWithObjects(map[string][]byte{"k": []byte("abc")})
	data, err := s.Get(context.Background(), "k")
	assert.NoError(t, err)
	data[0] = 'x'
	again, err := s.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}
