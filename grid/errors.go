package grid

import (
	"fmt"
)

// ErrNoSuchDataset is returned by Registry.Dataset() when no dataset
// is mounted under the requested name.
type ErrNoSuchDataset struct {
	Name string
}

func (err ErrNoSuchDataset) Error() string {
	return fmt.Sprintf("No such dataset %v", err.Name)
}

// ErrNoSuchVariable is returned by Dataset.Variable() when the dataset
// has no variable with the requested name.
type ErrNoSuchVariable struct {
	Dataset string
	Name    string
}

func (err ErrNoSuchVariable) Error() string {
	return fmt.Sprintf("No such variable %v in dataset %v", err.Name, err.Dataset)
}

// ErrNotZarr is returned by Open() when the store contains neither
// consolidated metadata nor a root group document.
type ErrNotZarr struct {
	Name string
}

func (err ErrNotZarr) Error() string {
	return fmt.Sprintf("Dataset %v is not a Zarr hierarchy", err.Name)
}

// ErrBadChunkKey is returned when a chunk key does not match the
// array's dimensionality or grid.
type ErrBadChunkKey struct {
	Key string
	Err error
}

func (err ErrBadChunkKey) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("Bad chunk key %v: %v", err.Key, err.Err)
	}
	return fmt.Sprintf("Bad chunk key %v", err.Key)
}
