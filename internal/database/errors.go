package database

import "errors"

var (
	// ErrCodeExists is returned when an attempt is made to create
	// a new mapping with a short code that already exists.
	ErrCodeExists = errors.New("short code exists")
	// ErrTargetURLExists is returned when an attempt is made to create
	// a new mapping for a target URL that is already shortened. Kept
	// distinct from ErrCodeExists so callers can recover by looking up
	// the existing mapping instead of regenerating a code.
	ErrTargetURLExists = errors.New("target url exists")
	// ErrURLNotFound is returned when no mapping exists for the given
	// short code or target URL.
	ErrURLNotFound = errors.New("url not found")
)
