package store

import "errors"

var (
	// ErrNotFound is returned when a write targets a record that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a name collides under case- and
	// accent-insensitive comparison.
	ErrDuplicate = errors.New("duplicate name")
	// ErrReferenced is returned when deleting a record that items still point to.
	ErrReferenced = errors.New("record is referenced by items")
	// ErrMissingReference is returned when an item points to a brand or
	// category that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
)
