package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument indicates a caller contract violation.
	ErrInvalidArgument = errors.New("invalid argument")
)
