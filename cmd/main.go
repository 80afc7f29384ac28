package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/rallyboard/internal/adapters/http/api"
	"github.com/okian/rallyboard/internal/adapters/http/site"
	"github.com/okian/rallyboard/internal/adapters/http/swagger"
	app "github.com/okian/rallyboard/internal/app"
	"github.com/okian/rallyboard/internal/config"
	"github.com/okian/rallyboard/internal/domain/model"
	"github.com/okian/rallyboard/internal/domain/ranking"
	"github.com/okian/rallyboard/pkg/logger"
	"github.com/okian/rallyboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	handlerTimeout            = 20 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logOpts []logger.Option
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(cfg.LogFile))
	}
	if err := logger.Init(logOpts...); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}
	log.Info(ctx, "server stopped")
}

// run starts the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("data_file", cfg.DataFile))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	return g.Wait()
}

// newService builds the leaderboard service from configuration.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithDataFile(cfg.DataFile),
		app.WithWatch(cfg.Watch),
		app.WithDebounce(cfg.WatchDebounce()),
	}

	if len(cfg.TierSizes) > 0 {
		layout, err := ranking.NewLayout(cfg.TierSizes...)
		if err != nil {
			return nil, fmt.Errorf("tier_sizes: %w", err)
		}
		opts = append(opts, app.WithLayout(layout))
	}

	if len(cfg.Overrides) > 0 {
		overrides := make([]model.Entry, 0, len(cfg.Overrides))
		for _, o := range cfg.Overrides {
			overrides = append(overrides, model.Entry{Name: o.Name, Score: o.Score, Partner: o.Partner})
		}
		opts = append(opts, app.WithOverrides(overrides...))
	}

	return app.New(opts...), nil
}

// newRouter wires middleware and every route group.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) chi.Router {
	r := chi.NewRouter()

	corsConfig := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(corsConfig.Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(handlerTimeout))

	apiServer := api.NewServer(svc, svc,
		api.WithLogger(log.Named("http")),
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		api.WithParseRateLimit(cfg.ParseRateLimit, cfg.ParseBurst),
		api.WithMaxParseBytes(cfg.MaxParseBytes),
		api.WithChart(cfg.ChartTopN, cfg.ChartWidth, cfg.ChartHeight),
	)
	r.Use(apiServer.Middlewares()...)

	swagger.Register(ctx, r)
	site.Register(ctx, r)
	apiServer.Register(ctx, r)
	return r
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average pause across all collections.
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
