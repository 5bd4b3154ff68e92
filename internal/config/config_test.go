package config_test

import (
	"testing"
	"time"

	"github.com/okian/padmixer/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.MidiDevice, convey.ShouldEqual, "LPD8")
			convey.So(cfg.RefreshMode, convey.ShouldEqual, config.RefreshTimer)
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 500*time.Millisecond)
			convey.So(cfg.CallTimeout(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.LaneQueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
			convey.So(cfg.TargetApps["mic"], convey.ShouldEqual, "discord")
		})
	})
}
