//go:build linux

package audio

import "context"

// NewPlatformBackend returns the pactl backend once the sound server answers.
func NewPlatformBackend(ctx context.Context, opts ...Option) (Backend, error) {
	b := NewPulse(opts...)
	if err := b.Probe(ctx); err != nil {
		return nil, err
	}
	return b, nil
}
