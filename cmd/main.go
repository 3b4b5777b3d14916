package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/vigil/internal/adapters/fetch"
	"github.com/okian/vigil/internal/adapters/http/api"
	"github.com/okian/vigil/internal/adapters/repository"
	"github.com/okian/vigil/internal/app"
	"github.com/okian/vigil/internal/config"
	"github.com/okian/vigil/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second

	statsRefreshInterval = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Open the store and migrate the schema.
	store, err := repository.Open(cfg.DBDSN)
	if err != nil {
		loggerInstance.Error(ctx, "failed to open store", logger.Error(err))
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			loggerInstance.Error(ctx, "failed to close store", logger.Error(err))
		}
	}()

	fetcher := fetch.NewClient(
		cfg.AttentionURL,
		cfg.DispositionURL,
		fetch.WithTimeout(time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
	)

	svc := app.New(store, fetcher,
		app.WithLogger(loggerInstance),
		app.WithCandidateWindowDays(cfg.CandidateWindowDays),
	)

	scheduler := app.NewScheduler(svc,
		app.WithInterval(time.Duration(cfg.FetchIntervalMinutes)*time.Minute),
		app.WithRunOnStart(cfg.FetchOnStart),
	)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Keep the store gauges fresh even without /stats traffic.
	go startStatsRefresher(ctx, svc)

	apiServer := api.NewServer(svc, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.NewRouter(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startStatsRefresher periodically recomputes store counts, which also
// pushes them into the Prometheus gauges.
func startStatsRefresher(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(statsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats(ctx)
		}
	}
}
