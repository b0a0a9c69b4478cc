// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package zarr

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"io/ioutil"
)

// Decompress expands a raw chunk object according to the array's
// compressor metadata.  A nil compressor means the chunk is stored
// uncompressed.  Codecs the package does not implement (notably blosc)
// produce ErrUnsupportedCompressor.
func Decompress(meta *CompressorMeta, data []byte) ([]byte, error) {
	if meta == nil {
		return data, nil
	}
	switch meta.ID {
	case "", "none":
		return data, nil
	case "zlib":
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return readAllAndClose(r)
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return readAllAndClose(r)
	default:
		return nil, ErrUnsupportedCompressor{ID: meta.ID}
	}
}

func readAllAndClose(r io.ReadCloser) ([]byte, error) {
	data, err := ioutil.ReadAll(r)
	if closeErr := r.Close(); err == nil {
		err = closeErr
	}
	return data, err
}
