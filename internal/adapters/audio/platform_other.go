//go:build !linux && !windows

package audio

import (
	"context"
	"fmt"
	"runtime"
)

// NewPlatformBackend reports that no audio backend exists for this OS.
func NewPlatformBackend(context.Context, ...Option) (Backend, error) {
	return nil, fmt.Errorf("%w: no audio backend for %s", ErrBackendUnavailable, runtime.GOOS)
}
