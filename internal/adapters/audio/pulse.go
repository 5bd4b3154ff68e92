package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/okian/padmixer/internal/domain/model"
)

// PulseBackend drives PulseAudio (or PipeWire's pulse server) through pactl.
type PulseBackend struct {
	opts options
}

// NewPulse creates a pactl-backed mixer.
func NewPulse(opts ...Option) *PulseBackend {
	return &PulseBackend{opts: buildOptions("pactl", opts)}
}

func (p *PulseBackend) Name() string { return "pulseaudio" }

// Probe checks that the sound server answers.
func (p *PulseBackend) Probe(ctx context.Context) error {
	if _, err := p.opts.runner(ctx, p.opts.binary, "info"); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return nil
}

type pulseObject struct {
	Index       uint32            `json:"index"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Properties  map[string]string `json:"properties"`
}

func (p *PulseBackend) list(ctx context.Context, what string) ([]pulseObject, error) {
	out, err := p.opts.runner(ctx, p.opts.binary, "-f", "json", "list", what)
	if err != nil {
		return nil, err
	}
	var objs []pulseObject
	if err := json.Unmarshal(out, &objs); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnexpectedOutput, what, err)
	}
	return objs, nil
}

func (p *PulseBackend) Sessions(ctx context.Context) ([]model.Session, error) {
	objs, err := p.list(ctx, "sink-inputs")
	if err != nil {
		return nil, err
	}
	out := make([]model.Session, 0, len(objs))
	for _, o := range objs {
		name := o.Properties["application.process.binary"]
		if name == "" {
			name = o.Properties["application.name"]
		}
		if name == "" {
			continue
		}
		out = append(out, model.Session{Name: name, Handle: strconv.FormatUint(uint64(o.Index), 10)})
	}
	return out, nil
}

func (p *PulseBackend) OutputDevices(ctx context.Context) ([]model.Device, error) {
	objs, err := p.list(ctx, "sinks")
	if err != nil {
		return nil, err
	}
	out := make([]model.Device, 0, len(objs))
	for _, o := range objs {
		name := o.Description
		if name == "" {
			name = o.Name
		}
		out = append(out, model.Device{Name: name, ID: o.Name})
	}
	return out, nil
}

func (p *PulseBackend) SetDefaultOutput(ctx context.Context, id string) error {
	_, err := p.opts.runner(ctx, p.opts.binary, "set-default-sink", id)
	return err
}

func (p *PulseBackend) SetSessionVolume(ctx context.Context, handle string, v float64) error {
	if _, err := strconv.ParseUint(handle, 10, 32); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	_, err := p.opts.runner(ctx, p.opts.binary, "set-sink-input-volume", handle, fmt.Sprintf("%d%%", percent(v)))
	return err
}

func (p *PulseBackend) SetMasterVolume(ctx context.Context, v float64) error {
	_, err := p.opts.runner(ctx, p.opts.binary, "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", percent(v)))
	return err
}
