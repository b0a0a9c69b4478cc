// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package gridpubd provides the gridpub server daemon.  It mounts
// Zarr datasets out of an object store and serves them over the REST
// interface in github.com/gridpub/gridpub/restserver: dataset and
// variable metadata, the query endpoint, raw Zarr passthrough, and
// the STAC catalog.
package main

import (
	"context"
	"flag"
	"io/ioutil"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/gridpub/gridpub/backend"
	"github.com/gridpub/gridpub/cache"
	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/stac"
	"github.com/gridpub/gridpub/stac/postgres"
)

// config is the daemon's YAML configuration file.
type config struct {
	// Mounts names the datasets to serve and their key prefixes
	// within the object store.
	Mounts []grid.Mount `yaml:"mounts"`

	// Catalog configures the generated STAC catalog.
	Catalog struct {
		ID          string `yaml:"id"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		License     string `yaml:"license"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"catalog"`
}

func main() {
	httpBind := flag.String("http", ":5980",
		"[ip]:port for HTTP REST interface")
	store := backend.Backend{Implementation: "memory", Address: ""}
	flag.Var(&store, "store", "impl[:address] of the object store")
	configFile := flag.String("config", "", "mount configuration YAML file")
	logRequests := flag.Bool("log-requests", false, "log all requests")
	cacheBytes := flag.Int64("cache-bytes", cache.DefaultChunkBytes,
		"chunk cache budget in bytes, 0 to disable")
	metaTTL := flag.Duration("meta-ttl", cache.DefaultMetaTTL,
		"lifetime of cached metadata documents")
	stacIndex := flag.String("stac-index", "memory",
		"\"memory\" or a postgres URL for the STAC item index")
	stacCatalog := flag.String("stac-catalog", "",
		"store key of a static STAC catalog to load instead of generating one")
	flag.Parse()

	conf, err := loadConfigYaml(*configFile)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not load YAML configuration")
		return
	}

	objects, err := store.Store()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not create object store")
		return
	}
	if *cacheBytes > 0 {
		objects = cache.NewWithOptions(objects, *cacheBytes, *metaTTL, clock.New())
	}

	ctx := context.Background()
	repo, err := grid.OpenMounts(ctx, objects, conf.Mounts)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not open datasets")
		return
	}
	for _, name := range repo.DatasetNames() {
		logrus.WithFields(logrus.Fields{
			"dataset": name,
		}).Info("Serving dataset")
	}

	index, err := newIndex(*stacIndex)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not create STAC index")
		return
	}

	generator := &stac.Generator{
		ID:          conf.Catalog.ID,
		Title:       conf.Catalog.Title,
		Description: conf.Catalog.Description,
		License:     conf.Catalog.License,
		BaseURL:     conf.Catalog.BaseURL,
	}
	if generator.ID == "" {
		generator.ID = "gridpub"
	}
	catalog := generator.Catalog()
	if *stacCatalog != "" {
		loaded, err := stac.Load(ctx, objects, *stacCatalog, index)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"err": err,
				"key": *stacCatalog,
			}).Fatal("Could not load STAC catalog")
			return
		}
		catalog = loaded
	} else if err = generator.Populate(ctx, repo, index); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not generate STAC catalog")
		return
	}

	observeRepository(repo)

	h := &HTTP{
		repo:        repo,
		index:       index,
		catalog:     catalog,
		laddr:       *httpBind,
		logRequests: *logRequests,
	}
	logrus.WithFields(logrus.Fields{
		"http":  *httpBind,
		"store": store.String(),
	}).Info("Starting gridpub server")
	if err = h.Serve(); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("HTTP server failed")
	}
}

// newIndex creates the STAC item index named by the -stac-index flag.
func newIndex(param string) (stac.Index, error) {
	if param == "" || param == "memory" {
		return stac.NewMemoryIndex(), nil
	}
	return postgres.New(param)
}

func loadConfigYaml(filename string) (config, error) {
	var result config
	if filename == "" {
		return result, nil
	}
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return result, err
}

// gracePeriod is how long an in-flight request gets to finish on
// shutdown.
const gracePeriod = 15 * time.Second
