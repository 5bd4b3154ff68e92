package probe_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/padmixer/internal/domain/mapping"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/internal/probe"
	"github.com/okian/padmixer/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeLister struct {
	sessions []model.Session
	devices  []model.Device
	err      error
}

func (f *fakeLister) Sessions(context.Context) ([]model.Session, error) { return f.sessions, f.err }
func (f *fakeLister) OutputDevices(context.Context) ([]model.Device, error) {
	return f.devices, f.err
}

func newEnv(out *bytes.Buffer) probe.Env {
	return probe.Env{
		Out:   out,
		Ports: func() []string { return []string{"LPD8:LPD8 MIDI 1 20:0"} },
		Backend: &fakeLister{
			sessions: []model.Session{{Name: "spotify", Handle: "42"}},
			devices: []model.Device{
				{Name: "Speakers (Realtek Audio)", ID: "spk"},
				{Name: "Headphones (USB Headset)", ID: "hp"},
			},
		},
		Table: mapping.Default(),
	}
}

func TestRunReport(t *testing.T) {
	ctx := context.Background()

	Convey("Given a probe environment", t, func() {
		var out bytes.Buffer
		env := newEnv(&out)

		Convey("When no section is selected", func() {
			So(probe.Run(ctx, &probe.Config{}, env), ShouldBeNil)

			Convey("Then every section is printed", func() {
				text := out.String()
				So(text, ShouldContainSubstring, "MIDI input ports:")
				So(text, ShouldContainSubstring, "LPD8:LPD8 MIDI 1 20:0")
				So(text, ShouldContainSubstring, "Audio sessions:")
				So(text, ShouldContainSubstring, "spotify")
				So(text, ShouldContainSubstring, "Output devices:")
				So(text, ShouldContainSubstring, "Mapping:")
				So(text, ShouldContainSubstring, "volume:spotify")
			})

			Convey("Then each alias shows the device it selects", func() {
				So(out.String(), ShouldContainSubstring, "-> Headphones (USB Headset)")
				So(out.String(), ShouldContainSubstring, "-> Speakers (Realtek Audio)")
			})
		})

		Convey("When only devices are requested as JSON", func() {
			So(probe.Run(ctx, &probe.Config{Devices: true, JSON: true}, env), ShouldBeNil)

			var report probe.Report
			So(json.Unmarshal(out.Bytes(), &report), ShouldBeNil)

			Convey("Then only the device section is present", func() {
				So(report.Ports, ShouldBeNil)
				So(report.Sessions, ShouldBeNil)
				So(report.Bindings, ShouldBeNil)
				So(report.Devices, ShouldHaveLength, 2)
				So(report.Aliases, ShouldResemble, []probe.AliasMatch{
					{Alias: "Desk Speakers", Substring: "Speakers", Device: "Speakers (Realtek Audio)"},
					{Alias: "Headphones", Substring: "Headphones", Device: "Headphones (USB Headset)"},
				})
			})
		})

		Convey("When the backend is unavailable", func() {
			env.Backend = &fakeLister{err: errors.New("pactl not found")}
			So(probe.Run(ctx, &probe.Config{Sessions: true}, env), ShouldBeNil)

			Convey("Then the error is reported instead of failing", func() {
				So(out.String(), ShouldContainSubstring, "audio backend: pactl not found")
				So(out.String(), ShouldContainSubstring, "(none)")
			})
		})
	})
}

func TestRunWatch(t *testing.T) {
	ctx := context.Background()

	Convey("Given watch mode", t, func() {
		var out bytes.Buffer
		env := newEnv(&out)

		Convey("When there is no input", func() {
			err := probe.Run(ctx, &probe.Config{Watch: true}, env)

			Convey("Then ErrNoInput is returned", func() {
				So(err, ShouldEqual, probe.ErrNoInput)
			})
		})

		Convey("When events arrive and the input closes", func() {
			events := make(chan model.MidiEvent, 2)
			events <- model.MidiEvent{Kind: model.ControlChange, Identifier: 1, Value: 127}
			events <- model.MidiEvent{Kind: model.NoteOn, Identifier: 99, Value: 64}
			close(events)

			closed := false
			env.Open = func(context.Context) (<-chan model.MidiEvent, func() error, error) {
				return events, func() error { closed = true; return nil }, nil
			}
			So(probe.Run(ctx, &probe.Config{Watch: true}, env), ShouldBeNil)

			Convey("Then each event is printed with its action", func() {
				So(out.String(), ShouldContainSubstring, "control_change ch=0 id=1 value=127 -> volume:spotify = 1.000")
				So(out.String(), ShouldContainSubstring, "note_on ch=0 id=99 value=64 -> (unmapped)")
				So(closed, ShouldBeTrue)
			})
		})
	})
}
