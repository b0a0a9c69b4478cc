// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package postgres_test

import (
	"os"
	"testing"

	"gopkg.in/check.v1"

	"github.com/gridpub/gridpub/stac"
	"github.com/gridpub/gridpub/stac/indextest"
	"github.com/gridpub/gridpub/stac/postgres"
)

// Test is the top-level entry point to run tests.
//
// The suite only registers itself when GRIDPUB_TEST_POSTGRES is set;
// its value is the connection string, and an empty value falls back
// to the standard libpq environment variables, as described in
// http://www.postgresql.org/docs/current/static/libpq-envars.html.
func Test(t *testing.T) { check.TestingT(t) }

func init() {
	dsn, present := os.LookupEnv("GRIDPUB_TEST_POSTGRES")
	if !present {
		return
	}
	check.Suite(&indextest.Suite{
		NewIndex: func() (stac.Index, error) {
			idx, err := postgres.New(dsn)
			if err != nil {
				return nil, err
			}
			// Each test wants an empty index.
			if err := postgres.Drop(idx.DB()); err != nil {
				return nil, err
			}
			if err := postgres.Upgrade(idx.DB()); err != nil {
				return nil, err
			}
			return idx, nil
		},
	})
}
