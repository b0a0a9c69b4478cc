package query

import (
	"errors"
	"fmt"
)

// errNotMonotonic reports a coordinate variable that cannot be
// searched.
var errNotMonotonic = errors.New("coordinate values are not monotonic")

// ErrBadSelection is returned when a query constrains a dimension in a
// way the variable cannot satisfy.
type ErrBadSelection struct {
	Dim    string
	Reason string
}

func (err ErrBadSelection) Error() string {
	return fmt.Sprintf("Bad selection on dimension %v: %v", err.Dim, err.Reason)
}

// ErrTooLarge is returned when a query selects more elements than its
// limit allows.  Callers map it to 413 Request Entity Too Large.
type ErrTooLarge struct {
	Elements int
	Limit    int
}

func (err ErrTooLarge) Error() string {
	return fmt.Sprintf("Query selects %v elements, limit %v", err.Elements, err.Limit)
}
