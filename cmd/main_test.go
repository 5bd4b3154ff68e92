package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/padmixer/internal/adapters/audio"
	"github.com/okian/padmixer/internal/adapters/midiin"
	app "github.com/okian/padmixer/internal/app"
	"github.com/okian/padmixer/internal/config"
	"github.com/okian/padmixer/internal/domain/mapping"
	"github.com/okian/padmixer/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestReportNoInput(t *testing.T) {
	convey.Convey("Given no matching MIDI port", t, func() {
		var buf bytes.Buffer

		convey.Convey("When other ports exist", func() {
			reportNoInput(&buf, "LPD8", []string{"Midi Through:0", "MPK mini:1"}, midiin.ErrInputDeviceNotFound)

			convey.Convey("Then the available ports are listed", func() {
				convey.So(buf.String(), convey.ShouldContainSubstring, midiin.ErrInputDeviceNotFound.Error())
				convey.So(buf.String(), convey.ShouldContainSubstring, `"LPD8"`)
				convey.So(buf.String(), convey.ShouldContainSubstring, "MPK mini:1")
			})
		})

		convey.Convey("When there are no ports at all", func() {
			reportNoInput(&buf, "LPD8", nil, midiin.ErrInputDeviceNotFound)

			convey.Convey("Then that is reported", func() {
				convey.So(buf.String(), convey.ShouldContainSubstring, "no MIDI input ports found")
			})
		})
	})
}

func TestLoadTable(t *testing.T) {
	ctx := context.Background()
	log := logger.Get()

	convey.Convey("Given a mapping document on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		doc := `{
	"audio_devices": {"Headphones": "USB Headset"},
	"midi_mappings": {
		"pads": {"36": "play_pause"},
		"knobs": {"1": "volume:spotify"}
	}
}`
		convey.So(os.WriteFile(path, []byte(doc), 0o600), convey.ShouldBeNil)

		convey.Convey("When it is referenced by absolute path", func() {
			cfg := config.New()
			cfg.MappingsPath = path
			table := loadTable(ctx, log, cfg)

			convey.Convey("Then its bindings replace the defaults", func() {
				convey.So(table.Len(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the path does not exist", func() {
			cfg := config.New()
			cfg.MappingsPath = filepath.Join(dir, "missing.json")
			table := loadTable(ctx, log, cfg)

			convey.Convey("Then the built-in table is used", func() {
				convey.So(table.Len(), convey.ShouldEqual, mapping.Default().Len())
			})
		})
	})
}

func TestOpenBackend(t *testing.T) {
	convey.Convey("Given a mixer binary that does not exist", t, func() {
		cfg := config.New()
		cfg.MixerBinary = filepath.Join(t.TempDir(), "no-such-mixer")

		convey.Convey("When the backend is opened", func() {
			mixer, up := openBackend(context.Background(), logger.Get(), cfg)

			convey.Convey("Then the degraded backend is returned", func() {
				convey.So(up, convey.ShouldBeFalse)
				_, ok := mixer.(audio.Unavailable)
				convey.So(ok, convey.ShouldBeTrue)

				_, err := mixer.Sessions(context.Background())
				convey.So(errors.Is(err, audio.ErrBackendUnavailable), convey.ShouldBeTrue)
			})
		})
	})
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New()
		cfg.RefreshMode = config.RefreshEvent

		convey.Convey("When a service is built from it in degraded mode", func() {
			svc := app.New(audio.Unavailable{}, mapping.Default(), serviceOptions(cfg, false)...)
			ctx := context.Background()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			convey.Convey("Then its stats reflect the configuration", func() {
				stats := svc.GetStats()
				convey.So(stats["backendAvailable"], convey.ShouldBeFalse)
				convey.So(stats["refreshMode"], convey.ShouldEqual, config.RefreshEvent)
			})
		})
	})
}
