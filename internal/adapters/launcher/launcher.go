// Package launcher starts applications detached from padmixer.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/okian/padmixer/pkg/logger"
)

// ErrLaunch wraps every start failure.
var ErrLaunch = errors.New("launch failed")

// Launcher starts processes in their own group so they outlive the mixer.
type Launcher struct {
	logger logger.Logger
}

// Option applies a configuration option to the Launcher.
type Option func(*Launcher)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(ln *Launcher) {
		if l != nil {
			ln.logger = l
		}
	}
}

// New creates a Launcher.
func New(opts ...Option) *Launcher {
	l := &Launcher{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("launcher")
	}
	return l
}

// Start runs path with no arguments. The whole string is the executable.
// The child is reaped in the background; its exit status is only logged.
func (l *Launcher) Start(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunch, path, err)
	}

	cmd := exec.Command(path)
	cmd.SysProcAttr = detached()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunch, path, err)
	}

	pid := cmd.Process.Pid
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug(context.Background(), "launched process exited",
				logger.String("path", path),
				logger.Int("pid", pid),
				logger.Error(err))
		}
	}()
	return nil
}
