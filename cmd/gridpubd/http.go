// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/restserver"
	"github.com/gridpub/gridpub/stac"
)

// HTTP serves gridpub HTTP connections.
type HTTP struct {
	repo        grid.Repository
	index       stac.Index
	catalog     *stac.Catalog
	laddr       string
	logRequests bool
}

// Serve runs the HTTP server on the configured local address.  It
// blocks until the process receives SIGINT or SIGTERM, then drains
// in-flight requests before returning.
func (h *HTTP) Serve() error {
	r := mux.NewRouter()
	restserver.PopulateRouter(r, h.repo, h.index, h.catalog)
	r.Handle("/metrics", promhttp.Handler())

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(requestID())
	if h.logRequests {
		n.Use(requestLogger())
	}
	n.UseHandler(r)

	server := &http.Server{Addr: h.laddr, Handler: n}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		return err
	case sig := <-signals:
		logrus.WithFields(logrus.Fields{
			"signal": sig,
		}).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracePeriod)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}

// requestID tags every request with an X-Request-Id header, keeping
// one the caller already supplied.
func requestID() negroni.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		id := req.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewV4().String()
			req.Header.Set("X-Request-Id", id)
		}
		resp.Header().Set("X-Request-Id", id)
		next(resp, req)
	}
}

// requestLogger logs one line per request with its outcome.
func requestLogger() negroni.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(resp, req)
		fields := logrus.Fields{
			"method":     req.Method,
			"path":       req.URL.Path,
			"request_id": req.Header.Get("X-Request-Id"),
			"duration":   time.Since(start),
		}
		if nw, ok := resp.(negroni.ResponseWriter); ok {
			fields["status"] = nw.Status()
			fields["size"] = nw.Size()
		}
		logrus.WithFields(fields).Info("Request")
	}
}
