package domain

import "github.com/luno/jettison/errors"

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrBadRequest is returned for malformed or missing input
	ErrBadRequest = errors.New("bad request")

	// ErrConflict is returned when a write would break a store invariant
	ErrConflict = errors.New("conflict")
)
