package cart

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTitle     = errors.New("title is required")
	ErrNegativePrice  = errors.New("price must not be negative")
	ErrEmptyPrice     = errors.New("price is empty")
	ErrMalformedPrice = errors.New("price is not a plain amount")
)

// PriceParseError reports a display price that could not be turned into an amount.
type PriceParseError struct {
	Text string
	Err  error
}

func (e *PriceParseError) Error() string {
	return fmt.Sprintf("parse price %q: %v", e.Text, e.Err)
}

func (e *PriceParseError) Unwrap() error {
	return e.Err
}

// IndexOutOfRangeError is returned by Remove for a position outside the cart,
// usually a stale reference held by a view.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("line index %d out of range [0,%d)", e.Index, e.Len)
}
