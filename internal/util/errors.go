package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSinkWrite indicates the staging replace could not be committed.
	// The previous staging snapshot is still intact when this is returned.
	ErrSinkWrite = errors.New("sink write failed")

	// ErrMissingReference indicates a row points at an album, artist or
	// genre that is not present in the snapshot
	ErrMissingReference = errors.New("missing reference")

	// ErrBadImport indicates a CSV import file could not be parsed
	ErrBadImport = errors.New("malformed import file")
)
