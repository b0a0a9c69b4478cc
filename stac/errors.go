package stac

import (
	"fmt"
)

// ErrNoSuchCollection is returned by Index.Collection() when the index
// has no collection with the requested id.
type ErrNoSuchCollection struct {
	ID string
}

func (err ErrNoSuchCollection) Error() string {
	return fmt.Sprintf("No such collection %v", err.ID)
}

// ErrNoSuchItem is returned by Index.Item() when the index has no item
// with the requested id.
type ErrNoSuchItem struct {
	ID string
}

func (err ErrNoSuchItem) Error() string {
	return fmt.Sprintf("No such item %v", err.ID)
}
