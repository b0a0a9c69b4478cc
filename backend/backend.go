// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct an object store
// based on command-line flags.
package backend

import (
	"errors"
	"strings"

	"github.com/gridpub/gridpub/storage"
	"github.com/gridpub/gridpub/storage/file"
	"github.com/gridpub/gridpub/storage/memory"
	"github.com/gridpub/gridpub/storage/s3"
)

// Backend describes user-visible parameters for the object store
// datasets are read from.  This implements the flag.Value interface,
// and so a typical use is
//
//     func main() {
//         storeBackend := backend.Backend{Implementation: "memory"}
//         flag.Var(&storeBackend, "store", "impl[:address] of the object store")
//         flag.Parse()
//         store, err := storeBackend.Store()
//     }
type Backend struct {
	// Implementation holds the name of the implementation: "memory",
	// "file", or "s3".
	Implementation string

	// Address holds a backend-specific address.  For "file" it is
	// the root directory.  For "s3" it is
	// "bucket[/prefix][@region]"; an empty region uses the AWS
	// default resolution.
	Address string
}

// Store creates a new object store.  This generally should only be
// called once; if the backend has in-process state, such as the
// contents of a memory store, calling this multiple times will create
// independent copies of that state.
func (b *Backend) Store() (storage.Store, error) {
	switch b.Implementation {
	case "", "memory":
		return memory.New(), nil
	case "file":
		if b.Address == "" {
			return nil, errors.New("file store requires a root directory")
		}
		return file.New(b.Address)
	case "s3":
		if b.Address == "" {
			return nil, errors.New("s3 store requires a bucket")
		}
		params := s3.Parameters{}
		address := b.Address
		if at := strings.LastIndex(address, "@"); at >= 0 {
			params.Region = address[at+1:]
			address = address[:at]
		}
		if slash := strings.Index(address, "/"); slash >= 0 {
			params.Bucket = address[:slash]
			params.Prefix = address[slash+1:]
		} else {
			params.Bucket = address
		}
		return s3.New(params)
	default:
		return nil, errors.New("unknown storage backend " + b.Implementation)
	}
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where address
// can be any string.  This is part of the flag.Value interface.  Note
// that Set does not attempt to validate the address or make a
// connection.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	b.Implementation = parts[0]
	if len(parts) == 2 {
		b.Address = parts[1]
	} else {
		b.Address = ""
	}
	switch b.Implementation {
	case "memory", "file", "s3":
		return nil
	}
	return errors.New("unknown storage backend " + b.Implementation)
}
