package registry

import "errors"

var (
	// ErrRefreshTimeout is joined with the context error when enumeration overruns.
	ErrRefreshTimeout = errors.New("session enumeration timed out")
	// ErrNoSource is returned by Refresh when the registry has no session source.
	ErrNoSource = errors.New("no session source")
)
