package config_test

import (
	"testing"
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.BasePath, convey.ShouldEqual, "/kankokujin-no-map")
			convey.So(cfg.TargetCountry, convey.ShouldEqual, "KR")
			convey.So(cfg.MaxAttempts, convey.ShouldEqual, 3)
			convey.So(cfg.PageLimit, convey.ShouldEqual, 500)
			convey.So(cfg.AllowList, convey.ShouldNotBeEmpty)
			convey.So(cfg.DenyList, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations derive from the millisecond and hour fields", func() {
			convey.So(cfg.RequestInterval(), convey.ShouldEqual, 100*time.Millisecond)
			convey.So(cfg.RetryBackoff(), convey.ShouldEqual, time.Second)
			convey.So(cfg.FullScanInterval(), convey.ShouldEqual, 7*24*time.Hour)
		})

		convey.Convey("Then each call returns an independent allow list", func() {
			other := config.New()
			other.AllowList[0] = "changed"
			convey.So(cfg.AllowList[0], convey.ShouldNotEqual, "changed")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()

		convey.Convey("When the default page size exceeds the maximum", func() {
			cfg.DefaultPageSize = cfg.MaxPageSize + 1
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When attempts drop below one", func() {
			cfg.MaxAttempts = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the collation locale is malformed", func() {
			cfg.CollationLocale = "not a locale!"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the discovery date is malformed", func() {
			cfg.DiscoverSince = "last year"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Then the default discovery date parses", func() {
			convey.So(cfg.DiscoverSinceTime().Year(), convey.ShouldEqual, 2020)
		})
	})
}
