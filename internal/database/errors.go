package database

import "errors"

var (
	// ErrNoRows marks a lookup that matched nothing.
	ErrNoRows = errors.New("no rows found")

	// ErrDuplicate marks a unique constraint violation.
	ErrDuplicate = errors.New("unique constraint violated")

	// ErrAlreadyDecided marks a status compare-and-set that found the
	// booking no longer WAITING at write time.
	ErrAlreadyDecided = errors.New("booking already decided")
)
