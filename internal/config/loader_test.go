package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/mentormatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.SkillWeight, convey.ShouldEqual, 0.25)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MENTORMATCH_ADDR", ":8080")
			_ = os.Setenv("MENTORMATCH_QUEUE_SIZE", "500")
			_ = os.Setenv("MENTORMATCH_WORKER_COUNT", "16")
			_ = os.Setenv("MENTORMATCH_SKILL_WEIGHT", "0.3")
			_ = os.Setenv("MENTORMATCH_CORS_ALLOWED_ORIGINS", "https://a.example")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.SkillWeight, convey.ShouldEqual, 0.3)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://a.example"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeConfigFile(t, `
addr: ":9090"
queue_size: 3000
worker_count: 24
industry_weight: 0
experience_weight: 0
storage: postgres
database_dsn: postgres://localhost/mm
`)
			_ = os.Setenv("MENTORMATCH_CONFIG", path)
			_ = os.Setenv("MENTORMATCH_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides the file and the file overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 3000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.IndustryWeight, convey.ShouldEqual, 0)
				convey.So(cfg.Storage, convey.ShouldEqual, config.StoragePostgres)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("MENTORMATCH_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			cfg, err := config.LoadFile("/non/existent/file.yaml")

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("MENTORMATCH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a weight is out of range", func() {
			_ = os.Setenv("MENTORMATCH_STYLE_WEIGHT", "1.2")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"MENTORMATCH_CONFIG", "MENTORMATCH_ADDR", "MENTORMATCH_QUEUE_SIZE",
		"MENTORMATCH_WORKER_COUNT", "MENTORMATCH_SKILL_WEIGHT", "MENTORMATCH_STYLE_WEIGHT",
		"MENTORMATCH_CORS_ALLOWED_ORIGINS",
	} {
		_ = os.Unsetenv(key)
	}
}
