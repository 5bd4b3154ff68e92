package probe

import (
	"context"
	"io"

	"github.com/okian/padmixer/internal/domain/mapping"
	"github.com/okian/padmixer/internal/domain/model"
)

// Config selects what the probe reports.
type Config struct {
	Ports    bool // list MIDI input ports
	Sessions bool // list backend audio sessions
	Devices  bool // list output devices and alias matches
	Mapping  bool // print the effective mapping table
	Watch    bool // print decoded events until interrupted
	JSON     bool // emit the report as JSON instead of text
}

// All reports whether no section was selected, which means every section.
func (c *Config) All() bool {
	return !c.Ports && !c.Sessions && !c.Devices && !c.Mapping && !c.Watch
}

// Lister enumerates what the audio backend can see.
type Lister interface {
	Sessions(ctx context.Context) ([]model.Session, error)
	OutputDevices(ctx context.Context) ([]model.Device, error)
}

// OpenFunc opens the MIDI input for watch mode and returns its stream and a closer.
type OpenFunc func(ctx context.Context) (<-chan model.MidiEvent, func() error, error)

// Env holds the collaborators the probe reads from.
type Env struct {
	Out     io.Writer
	Ports   func() []string
	Backend Lister
	Table   *mapping.Table
	Open    OpenFunc
}
