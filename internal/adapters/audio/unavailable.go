package audio

import (
	"context"
	"fmt"

	"github.com/okian/padmixer/internal/domain/model"
)

// Unavailable is the degraded-mode backend: every call fails with
// ErrBackendUnavailable.
type Unavailable struct {
	Reason error
}

func (u Unavailable) Name() string { return "unavailable" }

func (u Unavailable) err() error {
	if u.Reason != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, u.Reason)
	}
	return ErrBackendUnavailable
}

func (u Unavailable) Sessions(context.Context) ([]model.Session, error)     { return nil, u.err() }
func (u Unavailable) OutputDevices(context.Context) ([]model.Device, error) { return nil, u.err() }
func (u Unavailable) SetDefaultOutput(context.Context, string) error        { return u.err() }
func (u Unavailable) SetSessionVolume(context.Context, string, float64) error {
	return u.err()
}
func (u Unavailable) SetMasterVolume(context.Context, float64) error { return u.err() }
