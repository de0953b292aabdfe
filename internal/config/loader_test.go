package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/towncrier-app/towncrier/internal/config"
)

func TestLoad(t *testing.T) {
	Convey("Given the layered config loader", t, func() {
		Reset(func() {
			os.Unsetenv("TOWNCRIER_CONFIG")
			os.Unsetenv("TOWNCRIER_LOG_LEVEL")
			os.Unsetenv("TOWNCRIER_OUTPUT_DIR")
		})

		Convey("When nothing is set", func() {
			cfg, err := config.Load()

			Convey("Then defaults are returned", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.OutputDir, ShouldEqual, "events_data")
				So(cfg.Selection.Weights.Rank, ShouldEqual, 0.6)
				So(cfg.Location.Radius, ShouldEqual, "50mi")
			})
		})

		Convey("When a YAML file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "towncrier.yaml")
			content := []byte("log_level: debug\nevents_api:\n  categories: \"concerts,sports\"\n")
			So(os.WriteFile(path, content, 0o644), ShouldBeNil)
			os.Setenv("TOWNCRIER_CONFIG", path)

			cfg, err := config.Load()

			Convey("Then file values override defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.Events.Categories, ShouldEqual, "concerts,sports")
				So(cfg.OutputDir, ShouldEqual, "events_data")
			})
		})

		Convey("When env vars are set", func() {
			os.Setenv("TOWNCRIER_LOG_LEVEL", "warn")
			os.Setenv("TOWNCRIER_OUTPUT_DIR", "/tmp/out")

			cfg, err := config.Load()

			Convey("Then env values win", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "warn")
				So(cfg.OutputDir, ShouldEqual, "/tmp/out")
			})
		})

		Convey("When the config file path is invalid", func() {
			os.Setenv("TOWNCRIER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load()

			Convey("Then loading fails with the load sentinel", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "load config failed")
			})
		})
	})
}
