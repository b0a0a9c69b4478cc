// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridpub/gridpub/grid"
)

var datasetCount = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "gridpub",
		Name:      "datasets",
		Help:      "Number of mounted datasets",
	},
)

var datasetVariables = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "gridpub",
		Name:      "dataset_variables",
		Help:      "Number of variables per mounted dataset",
	},
	[]string{
		"dataset",
	},
)

func init() {
	prometheus.MustRegister(datasetCount, datasetVariables)
}

// observeRepository records gauges describing the mounted datasets.
// The mount table is fixed at startup, so one pass is enough; request
// and cache metrics come from their own packages.
func observeRepository(repo grid.Repository) {
	names := repo.DatasetNames()
	datasetCount.Set(float64(len(names)))
	for _, name := range names {
		ds, err := repo.Dataset(name)
		if err != nil {
			continue
		}
		datasetVariables.With(prometheus.Labels{
			"dataset": name,
		}).Set(float64(len(ds.VariableNames())))
	}
}
