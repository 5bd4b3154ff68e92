// Package model contains domain models passed between layers.
package model

import "time"

// Kind distinguishes the two MIDI messages the mixer reacts to.
type Kind uint8

const (
	// NoteOn is a pad press. Velocity is carried in Value but never selects an action.
	NoteOn Kind = iota + 1
	// ControlChange is a knob movement; Value drives continuous actions.
	ControlChange
)

// MaxValue is the largest 7-bit MIDI data value.
const MaxValue = 127

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case ControlChange:
		return "control_change"
	default:
		return "unknown"
	}
}

// MidiEvent is one decoded input event.
type MidiEvent struct {
	ID         string    // correlation id assigned on receipt
	Kind       Kind      // NoteOn or ControlChange
	Identifier uint8     // note number or controller number, 0-127
	Value      uint8     // velocity or controller value, 0-127
	Channel    uint8     // MIDI channel, 0-15
	Received   time.Time // receipt time
}

// VolumeScalar converts a 7-bit controller value into a volume scalar in [0,1].
// 0 maps to exactly 0.0 and 127 to exactly 1.0.
func VolumeScalar(v uint8) float64 {
	if v >= MaxValue {
		return 1.0
	}
	return float64(v) / MaxValue
}

// Clamp limits v to [0,1].
func Clamp(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
