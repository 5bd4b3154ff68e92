package audio

import (
	"errors"
	"fmt"

	"github.com/okian/padmixer/internal/domain/executor"
)

var (
	// ErrBackendUnavailable matches executor.ErrBackendUnavailable.
	ErrBackendUnavailable = fmt.Errorf("audio: %w", executor.ErrBackendUnavailable)
	ErrUnexpectedOutput   = errors.New("audio: unexpected mixer output")
	ErrInvalidHandle      = errors.New("audio: invalid session handle")
)
