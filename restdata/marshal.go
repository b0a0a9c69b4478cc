// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"mime"

	"github.com/ugorji/go/codec"
)

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}

	// Promote to more specific types
	switch mediaType {
	case "text/json", "application/json", JSONMediaType, V1JSONMediaType:
		mediaType = V1JSONMediaType
	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}

	decoder := codec.NewDecoder(r, jsonHandle())
	return decoder.Decode(out)
}

// Encode writes the JSON serialization of a restdata object.
func Encode(w io.Writer, in interface{}) error {
	encoder := codec.NewEncoder(w, jsonHandle())
	return encoder.Encode(in)
}

func jsonHandle() *codec.JsonHandle {
	// (We will be happy we picked this library if we do CBOR over
	// the wire some day.)
	handle := &codec.JsonHandle{}
	handle.Canonical = true
	return handle
}

// SetResult fills in the response's data fields from assembled values
// using the requested encoding.  Unknown encodings report
// ErrBadRequest.
func (resp *QueryResponse) SetResult(values []float64, encoding string) error {
	resp.Dtype = "<f8"
	switch encoding {
	case "", EncodingJSON:
		resp.Encoding = EncodingJSON
		resp.Values = values
	case EncodingBase64:
		resp.Encoding = EncodingBase64
		data := make([]byte, 8*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
		}
		resp.Data = base64.StdEncoding.EncodeToString(data)
	default:
		return ErrBadRequest{Err: fmt.Errorf("unknown encoding %q", encoding)}
	}
	return nil
}

// Result decodes the response's data fields back into values,
// whichever encoding they arrived in.
func (resp *QueryResponse) Result() ([]float64, error) {
	if resp.Encoding != EncodingBase64 {
		return resp.Values, nil
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(data)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return values, nil
}
