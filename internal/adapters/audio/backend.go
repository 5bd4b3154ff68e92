// Package audio implements the platform audio backends by driving the
// native command-line mixers.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/okian/padmixer/internal/domain/model"
)

// Backend is the per-platform audio capability.
type Backend interface {
	// Sessions lists active application sessions in enumeration order.
	Sessions(ctx context.Context) ([]model.Session, error)
	// OutputDevices lists render endpoints in enumeration order.
	OutputDevices(ctx context.Context) ([]model.Device, error)
	SetDefaultOutput(ctx context.Context, id string) error
	SetSessionVolume(ctx context.Context, handle string, v float64) error
	SetMasterVolume(ctx context.Context, v float64) error
	Name() string
}

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec. Stderr is folded into the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

type options struct {
	runner Runner
	binary string
}

// Option applies a configuration option to a backend.
type Option func(*options)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithBinary overrides the mixer executable path.
func WithBinary(path string) Option {
	return func(o *options) {
		if path != "" {
			o.binary = path
		}
	}
}

func buildOptions(defaultBinary string, opts []Option) options {
	o := options{runner: ExecRunner, binary: defaultBinary}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// percent renders v in [0,1] as a whole percentage.
func percent(v float64) int {
	return int(math.Round(model.Clamp(v) * 100))
}
