package executor

import (
	"time"

	"github.com/okian/padmixer/internal/domain/dedupe"
	"github.com/okian/padmixer/pkg/logger"
)

// Option applies a configuration option to the Executor.
type Option func(*Executor)

// WithDevices sets the device alias table.
func WithDevices(d Devices) Option {
	return func(e *Executor) {
		e.devices = d
	}
}

// WithKeys sets the media key sender. Without one transport actions are no-ops.
func WithKeys(k KeySender) Option {
	return func(e *Executor) {
		e.keys = k
	}
}

// WithLauncher sets the process launcher.
func WithLauncher(l Launcher) Option {
	return func(e *Executor) {
		e.launcher = l
	}
}

// WithBackendAvailable overrides whether the mixer initialised. When false,
// volume and device actions fail fast with ErrBackendUnavailable.
func WithBackendAvailable(up bool) Option {
	return func(e *Executor) {
		e.backendUp = up && e.mixer != nil
	}
}

// WithCallTimeout bounds every platform call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLimiter sets the deduper that rate-limits TargetUnavailable logs.
// Reset it on every registry refresh.
func WithLimiter(d dedupe.Deduper) Option {
	return func(e *Executor) {
		e.limiter = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}
