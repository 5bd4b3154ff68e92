// Package mapping resolves MIDI event identities to actions.
package mapping

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/internal/domain/types"
)

// Table is an immutable (kind, identifier) -> Action lookup plus the device
// alias table it was built with. The zero value resolves nothing.
type Table struct {
	pads    map[uint8]action.Action
	knobs   map[uint8]action.Action
	devices DeviceAliases
}

// DeviceAliases maps a human alias to the substring that identifies an OS
// output device.
type DeviceAliases map[string]string

// Lookup returns the device-name substring for alias.
func (d DeviceAliases) Lookup(alias string) (string, bool) {
	s, ok := d[alias]
	return s, ok
}

// Build validates doc and returns its table. Both groups must be present;
// identifiers must be integers in 0-127 and unique per group; knobs must
// bind SetVolume actions.
func Build(doc Document) (*Table, error) {
	if doc.AudioDevices == nil {
		return nil, fmt.Errorf("%w: audio_devices", ErrMissingGroup)
	}
	if doc.MidiMappings.Pads == nil || doc.MidiMappings.Knobs == nil {
		return nil, fmt.Errorf("%w: midi_mappings.pads and midi_mappings.knobs", ErrMissingGroup)
	}

	pads, err := buildGroup("pads", doc.MidiMappings.Pads, nil)
	if err != nil {
		return nil, err
	}
	knobs, err := buildGroup("knobs", doc.MidiMappings.Knobs, func(a action.Action) bool {
		return a.Type() == action.TypeVolume
	})
	if err != nil {
		return nil, err
	}

	devices := make(DeviceAliases, len(doc.AudioDevices))
	for alias, substr := range doc.AudioDevices {
		if substr == "" {
			return nil, fmt.Errorf("%w: audio_devices[%q] is empty", ErrInvalidBinding, alias)
		}
		devices[alias] = substr
	}

	return &Table{pads: pads, knobs: knobs, devices: devices}, nil
}

// Default returns the table built from DefaultDocument.
func Default() *Table {
	t, err := Build(DefaultDocument())
	if err != nil {
		panic(err)
	}
	return t
}

func buildGroup(group string, raw map[string]string, allow func(action.Action) bool) (map[uint8]action.Action, error) {
	out := make(map[uint8]action.Action, len(raw))
	for key, encoded := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || n < 0 || n > model.MaxValue {
			return nil, fmt.Errorf("%w: %s[%q] is not an identifier in 0-127", ErrInvalidBinding, group, key)
		}
		id := uint8(n)
		if _, dup := out[id]; dup {
			return nil, fmt.Errorf("%w: %s identifier %d bound twice", ErrDuplicateBinding, group, id)
		}
		a, err := action.Parse(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s[%q]: %w", group, key, err)
		}
		if allow != nil && !allow(a) {
			return nil, fmt.Errorf("%w: %s[%q] = %q", ErrInvalidBinding, group, key, encoded)
		}
		out[id] = a
	}
	return out, nil
}

// Resolve returns the action bound to (kind, id). Unbound identities and
// unknown kinds yield false.
func (t *Table) Resolve(kind model.Kind, id uint8) (action.Action, bool) {
	if t == nil {
		return nil, false
	}
	var a action.Action
	var ok bool
	switch kind {
	case model.NoteOn:
		a, ok = t.pads[id]
	case model.ControlChange:
		a, ok = t.knobs[id]
	}
	return a, ok
}

// Devices returns the device alias table.
func (t *Table) Devices() DeviceAliases {
	if t == nil {
		return nil
	}
	return t.devices
}

// VolumeTargets returns the distinct SetVolume targets bound to knobs, sorted.
func (t *Table) VolumeTargets() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, a := range t.knobs {
		if v, ok := a.(action.SetVolume); ok {
			seen[v.Target] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for target := range seen {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// Bindings lists every binding ordered by kind then identifier.
func (t *Table) Bindings() []types.Binding {
	if t == nil {
		return nil
	}
	out := make([]types.Binding, 0, len(t.pads)+len(t.knobs))
	for id, a := range t.pads {
		out = append(out, types.Binding{Kind: model.NoteOn.String(), Identifier: int(id), Action: a.String()})
	}
	for id, a := range t.knobs {
		out = append(out, types.Binding{Kind: model.ControlChange.String(), Identifier: int(id), Action: a.String()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind > out[j].Kind // note_on before control_change
		}
		return out[i].Identifier < out[j].Identifier
	})
	return out
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.pads) + len(t.knobs)
}
