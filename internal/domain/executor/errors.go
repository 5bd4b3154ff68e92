package executor

import (
	"errors"
	"fmt"

	"github.com/okian/padmixer/internal/domain/action"
)

// Action error kinds. Match with errors.Is against an *ActionError.
var (
	ErrTargetUnavailable  = errors.New("target unavailable")
	ErrDeviceNotFound     = errors.New("device not found")
	ErrLaunchFailed       = errors.New("launch failed")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrTimeout            = errors.New("platform call timed out")
	ErrKeyNotDelivered    = errors.New("media key not delivered")
)

// ErrCapabilityUnavailable is wrapped by collaborators that cannot work on
// the current platform. The executor treats it as degraded mode.
var ErrCapabilityUnavailable = errors.New("capability unavailable on this platform")

// ActionError is the single error an Execute call reports.
type ActionError struct {
	Kind   error
	Action action.Action
	Err    error
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Action, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Action, e.Kind, e.Err)
}

func (e *ActionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short label for err's kind, or "other".
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrTargetUnavailable):
		return "target_unavailable"
	case errors.Is(err, ErrDeviceNotFound):
		return "device_not_found"
	case errors.Is(err, ErrLaunchFailed):
		return "launch_failed"
	case errors.Is(err, ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrKeyNotDelivered):
		return "key_not_delivered"
	default:
		return "other"
	}
}

func newError(kind error, a action.Action, cause error) *ActionError {
	return &ActionError{Kind: kind, Action: a, Err: cause}
}
