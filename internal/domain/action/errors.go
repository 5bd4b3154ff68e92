package action

import "errors"

// Sentinel errors for action decoding.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidAction = errors.New("invalid action")
)
