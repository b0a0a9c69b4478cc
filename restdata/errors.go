// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"

	"github.com/gridpub/gridpub/grid"
	"github.com/gridpub/gridpub/query"
	"github.com/gridpub/gridpub/stac"
	"github.com/gridpub/gridpub/zarr"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  This remaps the well-known gridpub errors to
// specific e.Error codes.
func (e *ErrorResponse) FromError(err error) {
	e.Error = "error"
	e.Message = err.Error()
	if err == zarr.ErrUnsupportedFilters {
		e.Error = "ErrUnsupportedFilters"
	}
	switch et := err.(type) {
	case grid.ErrNoSuchDataset:
		e.Error = "ErrNoSuchDataset"
		e.Value = et.Name
	case grid.ErrNoSuchVariable:
		e.Error = "ErrNoSuchVariable"
		e.Value = et.Dataset + "/" + et.Name
	case grid.ErrNotZarr:
		e.Error = "ErrNotZarr"
		e.Value = et.Name
	case grid.ErrBadChunkKey:
		e.Error = "ErrBadChunkKey"
		e.Value = et.Key
	case query.ErrBadSelection:
		e.Error = "ErrBadSelection"
		e.Value = et.Dim
	case query.ErrTooLarge:
		e.Error = "ErrTooLarge"
		e.Value = strconv.Itoa(et.Elements)
	case stac.ErrNoSuchCollection:
		e.Error = "ErrNoSuchCollection"
		e.Value = et.ID
	case stac.ErrNoSuchItem:
		e.Error = "ErrNoSuchItem"
		e.Value = et.ID
	case ErrNotFound:
		// Discard this wrapper and return the embedded error
		e.FromError(et.Err)
	case ErrBadRequest:
		e.FromError(et.Err)
	}
}

// ToError converts e back to a gridpub error, if that is possible.
// If not, returns a plain error with e.Message text.
func (e *ErrorResponse) ToError() error {
	switch e.Error {
	case "ErrUnsupportedFilters":
		return zarr.ErrUnsupportedFilters
	case "ErrNoSuchDataset":
		return grid.ErrNoSuchDataset{Name: e.Value}
	case "ErrNoSuchVariable":
		dataset, name := "", e.Value
		if i := strings.IndexByte(e.Value, '/'); i >= 0 {
			dataset, name = e.Value[:i], e.Value[i+1:]
		}
		return grid.ErrNoSuchVariable{Dataset: dataset, Name: name}
	case "ErrNotZarr":
		return grid.ErrNotZarr{Name: e.Value}
	case "ErrBadChunkKey":
		return grid.ErrBadChunkKey{Key: e.Value}
	case "ErrBadSelection":
		return query.ErrBadSelection{Dim: e.Value, Reason: e.Message}
	case "ErrTooLarge":
		elements, _ := strconv.Atoi(e.Value)
		return query.ErrTooLarge{Elements: elements}
	case "ErrNoSuchCollection":
		return stac.ErrNoSuchCollection{ID: e.Value}
	case "ErrNoSuchItem":
		return stac.ErrNoSuchItem{ID: e.Value}
	default:
		return errors.New(e.Message)
	}
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//	defer func() {
//	    if obj := recover(); obj != nil {
//	        resp := restdata.ErrorResponse{}
//	        resp.FromPanic(obj)
//	        // write resp out as makes sense
//	    }
//	}
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	len := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:len])
}
