// Package keys emulates media keys on the host desktop.
package keys

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/executor"
)

// Sender delivers one media key press.
type Sender interface {
	Send(ctx context.Context, key action.TransportKey) error
}

var (
	// ErrUnsupported matches executor.ErrCapabilityUnavailable.
	ErrUnsupported = fmt.Errorf("keys: %w", executor.ErrCapabilityUnavailable)
	// ErrNoPlayer also matches executor.ErrCapabilityUnavailable: with no
	// player there is nothing to deliver to.
	ErrNoPlayer = fmt.Errorf("keys: no media player on the session bus: %w", executor.ErrCapabilityUnavailable)

	ErrUnknownKey = errors.New("keys: unknown key")
)
