package scene

import "errors"

var (
	// ErrBodyNotFound is returned when an id is not registered
	ErrBodyNotFound = errors.New("body not found")

	// ErrDuplicateBody is returned when an id is registered twice
	ErrDuplicateBody = errors.New("duplicate body id")

	// ErrInvalidBody is returned for bodies with non-finite or out-of-range parameters
	ErrInvalidBody = errors.New("invalid body")

	// ErrNonFiniteDelta is returned when a frame delta or time scale is NaN or ±Inf
	ErrNonFiniteDelta = errors.New("non-finite frame delta")
)
