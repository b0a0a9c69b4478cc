package zarr

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFilters is returned when an array declares filter
// codecs, which this package does not implement.
var ErrUnsupportedFilters = errors.New("Zarr filters are not supported")

// ErrNoSuchKey is returned when a metadata document or chunk object is
// absent from the store and no fallback applies.
type ErrNoSuchKey struct {
	Key string
}

func (err ErrNoSuchKey) Error() string {
	return fmt.Sprintf("No such key %v", err.Key)
}

// ErrBadFormat is returned when a metadata document declares a storage
// specification version other than 2.
type ErrBadFormat struct {
	Version int
}

func (err ErrBadFormat) Error() string {
	return fmt.Sprintf("Unsupported zarr_format %v", err.Version)
}

// ErrUnsupportedOrder is returned when an array is stored in an element
// order this package cannot decode (anything but "C").
type ErrUnsupportedOrder struct {
	Order string
}

func (err ErrUnsupportedOrder) Error() string {
	return fmt.Sprintf("Unsupported element order %q", err.Order)
}

// ErrUnsupportedCompressor is returned when a chunk is compressed with
// a codec this package does not implement, for instance blosc.
type ErrUnsupportedCompressor struct {
	ID string
}

func (err ErrUnsupportedCompressor) Error() string {
	return fmt.Sprintf("Unsupported compressor %q", err.ID)
}

// ErrUnsupportedDtype is returned when an array's element type cannot
// be decoded into numbers, for instance fixed-length strings.
type ErrUnsupportedDtype struct {
	Dtype string
}

func (err ErrUnsupportedDtype) Error() string {
	return fmt.Sprintf("Unsupported dtype %q", err.Dtype)
}
