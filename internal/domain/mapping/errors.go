package mapping

import "errors"

// Sentinel error kinds for mapping validation.
var (
	ErrMissingGroup     = errors.New("mapping group missing")
	ErrInvalidBinding   = errors.New("invalid binding")
	ErrDuplicateBinding = errors.New("duplicate binding")
)
