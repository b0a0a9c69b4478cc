// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package gridbench provides a load-generation tool for a gridpub
// server.  It drives the REST interface the way a remote analysis
// client would: chunk fetches, query requests, and STAC searches.
package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/urfave/cli"

	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/restclient"
	"github.com/gridpub/gridpub/restdata"
)

type benchWork struct {
	Client      *restclient.Client
	Dataset     *restclient.Dataset
	Concurrency int
}

func (bench *benchWork) Run(runner func()) {
	wg := sync.WaitGroup{}
	wg.Add(bench.Concurrency)
	for i := 0; i < bench.Concurrency; i++ {
		go func() {
			defer wg.Done()
			runner()
		}()
	}
	wg.Wait()
}

var bench benchWork

// counted hands out count sequence numbers across the worker
// goroutines and reports the rate once they finish.
func counted(count int, each func()) {
	numbers := make(chan int)
	go func() {
		for i := 1; i <= count; i++ {
			numbers <- i
		}
		close(numbers)
	}()
	start := time.Now()
	bench.Run(func() {
		for <-numbers != 0 {
			each()
		}
	})
	elapsed := time.Since(start)
	fmt.Printf("%v requests in %v (%.1f/sec)\n",
		count, elapsed, float64(count)/elapsed.Seconds())
}

var fetchChunks = cli.Command{
	Name:  "chunks",
	Usage: "fetch random chunks of one variable",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "variable",
			Usage: "variable to read chunks of",
		},
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of chunks to fetch",
		},
	},
	Action: func(c *cli.Context) error {
		if bench.Dataset == nil {
			return fmt.Errorf("no dataset named")
		}
		v, err := bench.Dataset.Variable(c.String("variable"))
		if err != nil {
			return err
		}
		shape := v.Representation.Shape
		chunks := v.Representation.Chunks
		grid := make([]int, len(shape))
		for i := range shape {
			grid[i] = (shape[i] + chunks[i] - 1) / chunks[i]
		}

		counted(c.Int("count"), func() {
			key := ""
			for i, n := range grid {
				if i > 0 {
					key += "."
				}
				key += fmt.Sprintf("%d", rand.Intn(n))
			}
			// Missing chunks 404; for sparse data that is
			// still a representative fetch.
			_, _ = v.Chunk(key)
		})
		return nil
	},
}

var runQueries = cli.Command{
	Name:  "query",
	Usage: "run random window queries against one variable",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "variable",
			Usage: "variable to query",
		},
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of queries to run",
		},
		cli.IntFlag{
			Name:  "window",
			Value: 16,
			Usage: "index extent of each query along each dimension",
		},
		cli.StringFlag{
			Name:  "encoding",
			Value: restdata.EncodingJSON,
			Usage: "response data encoding, json or base64",
		},
	},
	Action: func(c *cli.Context) error {
		if bench.Dataset == nil {
			return fmt.Errorf("no dataset named")
		}
		v, err := bench.Dataset.Variable(c.String("variable"))
		if err != nil {
			return err
		}
		window := c.Int("window")
		encoding := c.String("encoding")
		dims := v.Representation.Dims
		shape := v.Representation.Shape

		counted(c.Int("count"), func() {
			index := map[string]query.Range{}
			for i, dim := range dims {
				extent := window
				if extent > shape[i] {
					extent = shape[i]
				}
				lo := 0
				if shape[i] > extent {
					lo = rand.Intn(shape[i] - extent)
				}
				index[dim] = query.Range{Start: lo, Stop: lo + extent}
			}
			_, _ = bench.Dataset.Query(restdata.QueryRequest{
				Variable: v.Name(),
				Index:    index,
				Encoding: encoding,
			})
		})
		return nil
	},
}

var runSearches = cli.Command{
	Name:  "stac",
	Usage: "run STAC item searches",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of searches to run",
		},
	},
	Action: func(c *cli.Context) error {
		counted(c.Int("count"), func() {
			west := rand.Float64()*340 - 180
			south := rand.Float64()*160 - 90
			_, _ = bench.Client.Search(restdata.SearchRequest{
				Bbox: []float64{west, south, west + 20, south + 20},
			})
		})
		return nil
	},
}

func main() {
	app := cli.NewApp()
	app.Usage = "benchmark a gridpub server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "url",
			Value: "http://localhost:5980/",
			Usage: "base URL of the gridpub server",
		},
		cli.StringFlag{
			Name:  "dataset",
			Usage: "dataset name to read",
		},
		cli.IntFlag{
			Name:  "concurrency",
			Value: runtime.NumCPU(),
			Usage: "run this many requests in parallel",
		},
	}
	app.Commands = []cli.Command{
		fetchChunks,
		runQueries,
		runSearches,
	}
	app.Before = func(c *cli.Context) (err error) {
		bench.Client, err = restclient.New(c.String("url"))
		if err != nil {
			return
		}
		if name := c.String("dataset"); name != "" {
			bench.Dataset, err = bench.Client.Dataset(name)
			if err != nil {
				return
			}
		}
		bench.Concurrency = c.Int("concurrency")
		return
	}
	app.RunAndExitOnError()
}
