package indexers

import "errors"

// ErrMalformedRow marks a listing row that lacks a field the adapter cannot
// do without. Adapters log it and move on to the next row.
var ErrMalformedRow = errors.New("malformed row")
