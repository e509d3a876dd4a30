package library

import "errors"

var (
	// ErrNotFound indicates the requested artist, album, or file doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint violation, such as adding
	// an artist name or file path that is already tracked.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConstraint indicates a foreign key or check constraint violation.
	ErrConstraint = errors.New("constraint violation")
)
