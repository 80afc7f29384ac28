package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/rallyboard/internal/config"
	"github.com/okian/rallyboard/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaderboard.txt")
	content := "1. Bluey (279.7m with Ultimate Bluey)\n2. Bingo (201.5m with Chilli)\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.New(context.Background())
	cfg.DataFile = path
	cfg.Watch = false
	return cfg
}

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := testConfig(t)

		convey.Convey("When custom tier sizes and overrides are set", func() {
			cfg.TierSizes = []int{1}
			cfg.Overrides = []config.Override{{Name: "Bingo", Score: 300, Partner: "Bandit"}}

			svc, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the service should use them", func() {
				convey.So(svc.Layout().Sizes, convey.ShouldResemble, []int{1})
				top, err := svc.TopN(context.Background(), 1)
				convey.So(err, convey.ShouldBeNil)
				convey.So(top[0].Name, convey.ShouldEqual, "Bingo")
				convey.So(top[0].Partner, convey.ShouldEqual, "Bandit")
			})
		})

		convey.Convey("When tier sizes are invalid", func() {
			cfg.TierSizes = []int{0}
			_, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewRouter(t *testing.T) {
	convey.Convey("Given a router built from configuration", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		svc, err := newService(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		r := newRouter(ctx, cfg, svc, logger.Get())

		for _, path := range []string{"/", "/healthz", "/leaderboard", "/tiers/1", "/api-docs", "/openapi.yaml", "/static/dashboard.css"} {
			convey.Convey("Then GET "+path+" should succeed", func() {
				req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
				w := httptest.NewRecorder()
				r.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		}

		convey.Convey("Then trailing slashes should be ignored", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard/", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then CORS preflight should be answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/parse", http.NoBody)
			req.Header.Set("Origin", "http://example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "*")
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a free address", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		addr := ln.Addr().String()
		convey.So(ln.Close(), convey.ShouldBeNil)

		cfg := testConfig(t)
		cfg.Addr = addr

		convey.Convey("When the server runs until cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg, logger.Get()) }()

			var resp *http.Response
			for i := 0; i < 50; i++ {
				resp, err = http.Get("http://" + addr + "/leaderboard")
				if err == nil {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}

			convey.Convey("Then it should serve and shut down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				_ = resp.Body.Close()

				cancel()
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop should stop with its context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
