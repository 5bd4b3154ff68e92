// Package midiin opens a MIDI input port and decodes its messages into
// model.MidiEvent values.
package midiin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/pkg/logger"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register rtmidi driver
)

// ErrInputDeviceNotFound is returned by Open when no port name matches.
var ErrInputDeviceNotFound = errors.New("no matching MIDI input device")

// Ports returns the names of the available input ports.
func Ports() []string {
	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// CloseDriver releases the MIDI driver. Call once at exit.
func CloseDriver() {
	midi.CloseDriver()
}

// Input is an open port delivering decoded events.
type Input struct {
	port     drivers.In
	stop     func()
	logger   logger.Logger
	zeroNote bool

	mu      sync.RWMutex
	closed  bool
	events  chan model.MidiEvent
	dropped atomic.Uint64
}

type options struct {
	buffer   int
	zeroNote bool
	logger   logger.Logger
}

// Option applies a configuration option to Open.
type Option func(*options)

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// WithZeroVelocityNotes reports NoteOn messages with velocity 0 as presses.
// Off by default: most controllers send them on pad release.
func WithZeroVelocityNotes(on bool) Option {
	return func(o *options) {
		o.zeroNote = on
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Open listens on the first input port whose name contains substr.
// The port is closed when ctx ends or Close is called.
func Open(ctx context.Context, substr string, opts ...Option) (*Input, error) {
	o := options{buffer: 256}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("midiin")
	}

	var port drivers.In
	for _, in := range midi.GetInPorts() {
		if strings.Contains(in.String(), substr) {
			port = in
			break
		}
	}
	if port == nil {
		return nil, fault.Wrap(ErrInputDeviceNotFound,
			fmsg.WithDesc(fmt.Sprintf("no input port contains %q", substr),
				"Please ensure the MIDI controller is connected and midi_device names it"),
			ftag.With(ftag.NotFound),
		)
	}

	in := &Input{
		port:     port,
		logger:   o.logger,
		zeroNote: o.zeroNote,
		events:   make(chan model.MidiEvent, o.buffer),
	}
	stop, err := midi.ListenTo(port, in.receive)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("listen on "+port.String(), "The MIDI port could not be opened; it may be in use by another program"),
		)
	}
	in.stop = stop
	o.logger.Info(ctx, "connected to MIDI device", logger.String("port", port.String()))

	go func() {
		<-ctx.Done()
		_ = in.Close()
	}()
	return in, nil
}

func (in *Input) receive(msg midi.Message, _ int32) {
	ev, ok := DecodeWith(msg, in.zeroNote)
	if !ok {
		return
	}
	ev.ID = uuid.NewString()
	ev.Received = time.Now()

	in.mu.RLock()
	defer in.mu.RUnlock()
	if in.closed {
		return
	}
	select {
	case in.events <- ev:
	default:
		if in.dropped.Add(1) == 1 {
			in.logger.Warn(context.Background(), "event buffer full, dropping MIDI events")
		}
	}
}

// Name returns the port name.
func (in *Input) Name() string {
	return in.port.String()
}

// Events returns the decoded event stream. It is closed by Close.
func (in *Input) Events() <-chan model.MidiEvent {
	return in.events
}

// Dropped returns how many events were discarded because the buffer was full.
func (in *Input) Dropped() uint64 {
	return in.dropped.Load()
}

// Close stops listening and closes the event stream. Safe to call twice.
func (in *Input) Close() error {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return nil
	}
	in.closed = true
	close(in.events)
	in.mu.Unlock()

	if in.stop != nil {
		in.stop()
	}
	return in.port.Close()
}

// Decode converts a raw message into an event. Only NoteOn with a non-zero
// velocity and ControlChange are reported; a zero-velocity NoteOn is a
// release on most controllers.
func Decode(msg midi.Message) (model.MidiEvent, bool) {
	return DecodeWith(msg, false)
}

// DecodeWith is Decode with zero-velocity NoteOn reporting chosen by the caller.
func DecodeWith(msg midi.Message, zeroVelocityNotes bool) (model.MidiEvent, bool) {
	var ch, id, val uint8
	switch {
	case msg.GetNoteOn(&ch, &id, &val):
		if val == 0 && !zeroVelocityNotes {
			return model.MidiEvent{}, false
		}
		return model.MidiEvent{Kind: model.NoteOn, Identifier: id, Value: val, Channel: ch}, true
	case msg.GetControlChange(&ch, &id, &val):
		return model.MidiEvent{Kind: model.ControlChange, Identifier: id, Value: val, Channel: ch}, true
	default:
		return model.MidiEvent{}, false
	}
}
