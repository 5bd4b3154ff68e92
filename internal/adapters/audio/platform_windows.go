//go:build windows

package audio

import "context"

// NewPlatformBackend returns the svcl backend once it produces a listing.
func NewPlatformBackend(ctx context.Context, opts ...Option) (Backend, error) {
	b := NewSoundVolume(opts...)
	if err := b.Probe(ctx); err != nil {
		return nil, err
	}
	return b, nil
}
