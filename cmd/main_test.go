package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/vigil/internal/adapters/fetch"
	"github.com/okian/vigil/internal/adapters/http/api"
	"github.com/okian/vigil/internal/adapters/repository"
	"github.com/okian/vigil/internal/app"
	"github.com/okian/vigil/internal/config"
	"github.com/okian/vigil/pkg/logger"
	"github.com/okian/vigil/pkg/metrics"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("VIGIL_ADDR", ":8080")
			_ = os.Setenv("VIGIL_FETCH_INTERVAL_MINUTES", "30")
			defer func() {
				_ = os.Unsetenv("VIGIL_ADDR")
				_ = os.Unsetenv("VIGIL_FETCH_INTERVAL_MINUTES")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.FetchIntervalMinutes, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When wiring the service components together", func() {
			store, err := repository.Open(filepath.Join(t.TempDir(), "vigil.db"))
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			fetcher := fetch.NewClient("http://localhost:9095/attention", "http://localhost:9095/disposition")
			svc := app.New(store, fetcher)
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then the API server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
				convey.So(server.NewRouter(), convey.ShouldNotBeNil)
			})

			convey.Convey("And the scheduler should be creatable", func() {
				sched := app.NewScheduler(svc)
				convey.So(sched, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then the metrics registry should be available", func() {
				convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
			})
		})
	})
}
