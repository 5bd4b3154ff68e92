//go:build !linux && !windows

package keys

import (
	"context"

	"github.com/okian/padmixer/internal/domain/action"
)

type unsupported struct{}

// New returns a sender that always reports ErrUnsupported.
func New() Sender {
	return unsupported{}
}

func (unsupported) Send(context.Context, action.TransportKey) error {
	return ErrUnsupported
}
