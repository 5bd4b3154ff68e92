// Package probe implements the diagnostic tool that shows what padmixer
// sees: MIDI ports, audio sessions, output devices and the mapping table.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/okian/padmixer/internal/domain/mapping"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/pkg/logger"
)

// ErrNoInput is returned by Run when watch mode has no input to open.
var ErrNoInput = errors.New("no MIDI input to watch")

// Run prints the selected report and, in watch mode, decoded events until
// ctx ends or the input closes.
func Run(ctx context.Context, cfg *Config, env Env) error {
	if env.Table == nil {
		env.Table = mapping.Default()
	}

	report := Gather(ctx, cfg, env)
	var err error
	if cfg.JSON {
		err = report.WriteJSON(env.Out)
	} else {
		err = report.WriteText(env.Out)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !cfg.Watch {
		return nil
	}
	return watch(ctx, env)
}

func watch(ctx context.Context, env Env) error {
	if env.Open == nil {
		return ErrNoInput
	}
	events, closeFn, err := env.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	logger.Get().Named("probe").Info(ctx, "watching MIDI input, press Ctrl-C to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeEvent(env.Out, env.Table, ev); err != nil {
				return err
			}
		}
	}
}

func writeEvent(w io.Writer, table *mapping.Table, ev model.MidiEvent) error { //nolint:gocritic // hugeParam: events arrive by value
	target := "(unmapped)"
	if a, ok := table.Resolve(ev.Kind, ev.Identifier); ok {
		target = a.String()
		if ev.Kind == model.ControlChange {
			target = fmt.Sprintf("%s = %.3f", target, model.VolumeScalar(ev.Value))
		}
	}
	_, err := fmt.Fprintf(w, "%s ch=%d id=%d value=%d -> %s\n",
		ev.Kind, ev.Channel, ev.Identifier, ev.Value, target)
	return err
}
