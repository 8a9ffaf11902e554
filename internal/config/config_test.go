package config_test

import (
	"testing"

	"github.com/okian/topskim/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()
		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.MonitorAddr, convey.ShouldEqual, "")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 1)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 4096)
			convey.So(cfg.DedupeEvents, convey.ShouldBeFalse)
			convey.So(cfg.Cuts.LeptonPtMin, convey.ShouldEqual, 20)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
