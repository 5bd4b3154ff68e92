package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrConfigInvalid reports that the mapping document was unusable and
	// the built-in table is in effect.
	ErrConfigInvalid = errors.New("mapping document invalid, using defaults")
)
