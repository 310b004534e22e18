package store

import "errors"

var (
	// ErrDuplicate is returned when a unique key is already present
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrReadOnly is returned by writes made inside View
	ErrReadOnly = errors.New("store: read-only transaction")
)
