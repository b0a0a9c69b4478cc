// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package stac_test

import (
	"testing"

	"gopkg.in/check.v1"

	"github.com/gridpub/gridpub/stac"
	"github.com/gridpub/gridpub/stac/indextest"
)

// Test is the top-level entry point to run the gocheck suites.
func Test(t *testing.T) { check.TestingT(t) }

func init() {
	check.Suite(&indextest.Suite{
		NewIndex: func() (stac.Index, error) {
			return stac.NewMemoryIndex(), nil
		},
	})
}
