// Package action defines the closed vocabulary of semantic mixer actions and
// their compact string encoding used by the mapping document.
//
// Encodings:
//
//	previous_track | play_pause | next_track | mute_mic
//	switch_device:<alias>
//	launch:<path>
//	volume:<target>
//
// Strings are parsed once at load time; nothing re-parses per event.
package action

import (
	"fmt"
	"strings"
)

// Type is the tag of an Action.
type Type string

const (
	TypeTransport    Type = "transport"
	TypeSwitchDevice Type = "switch_device"
	TypeLaunch       Type = "launch"
	TypeVolume       Type = "volume"
)

// MasterTarget is the distinguished SetVolume target for the system output level.
const MasterTarget = "master"

const (
	prefixSwitchDevice = "switch_device:"
	prefixLaunch       = "launch:"
	prefixVolume       = "volume:"
)

// TransportKey is a media key the mixer can emulate.
type TransportKey uint8

const (
	Previous TransportKey = iota + 1
	PlayPause
	Next
	MuteMic
)

var transportNames = map[TransportKey]string{
	Previous:  "previous_track",
	PlayPause: "play_pause",
	Next:      "next_track",
	MuteMic:   "mute_mic",
}

func (k TransportKey) String() string {
	if s, ok := transportNames[k]; ok {
		return s
	}
	return fmt.Sprintf("transport(%d)", uint8(k))
}

// Action is one of TransportControl, SwitchOutputDevice, LaunchProcess or SetVolume.
type Action interface {
	Type() Type
	// String returns the compact encoding; Parse(a.String()) == a.
	String() string
	isAction()
}

// TransportControl emulates a media key.
type TransportControl struct {
	Key TransportKey
}

// SwitchOutputDevice makes the device behind Alias the default output.
type SwitchOutputDevice struct {
	Alias string
}

// LaunchProcess starts Path as a detached process.
type LaunchProcess struct {
	Path string
}

// SetVolume sets the level of Target ("master" or an application alias).
type SetVolume struct {
	Target string
}

func (TransportControl) Type() Type   { return TypeTransport }
func (SwitchOutputDevice) Type() Type { return TypeSwitchDevice }
func (LaunchProcess) Type() Type      { return TypeLaunch }
func (SetVolume) Type() Type          { return TypeVolume }

func (a TransportControl) String() string   { return a.Key.String() }
func (a SwitchOutputDevice) String() string { return prefixSwitchDevice + a.Alias }
func (a LaunchProcess) String() string      { return prefixLaunch + a.Path }
func (a SetVolume) String() string          { return prefixVolume + a.Target }

func (TransportControl) isAction()   {}
func (SwitchOutputDevice) isAction() {}
func (LaunchProcess) isAction()      {}
func (SetVolume) isAction()          {}

// Parse decodes a compact action string. Only the first ':' separates the
// prefix from the argument, so paths such as "launch:C:\Apps\x.exe" survive.
func Parse(s string) (Action, error) {
	for k, name := range transportNames {
		if s == name {
			return TransportControl{Key: k}, nil
		}
	}

	prefix, arg, found := strings.Cut(s, ":")
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	if arg == "" {
		return nil, fmt.Errorf("%w: %q has an empty argument", ErrInvalidAction, s)
	}

	switch prefix + ":" {
	case prefixSwitchDevice:
		return SwitchOutputDevice{Alias: arg}, nil
	case prefixLaunch:
		return LaunchProcess{Path: arg}, nil
	case prefixVolume:
		return SetVolume{Target: arg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// MustParse is Parse for package-level tables; it panics on error.
func MustParse(s string) Action {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// LaneKey returns the serialization key for a: actions sharing a key are
// applied in event order. Volume actions serialize per target; the other
// types each share one lane because they touch a single global resource.
func LaneKey(a Action) string {
	if v, ok := a.(SetVolume); ok {
		return prefixVolume + v.Target
	}
	return string(a.Type())
}
