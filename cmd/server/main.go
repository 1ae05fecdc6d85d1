package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkin/internal/adapters/api"
	web "checkin/internal/adapters/http"
	"checkin/internal/adapters/http/perf"
	"checkin/internal/adapters/storage"
	sessionStore "checkin/internal/adapters/storage/session"
	"checkin/internal/application/orchestrators"
	"checkin/internal/config"
	"checkin/internal/platform/logger"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log, os.Stdout)

	if err := run(cfg); err != nil {
		slog.Error("server_exit", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sessions are the only local state; everything else lives behind the API
	db, err := storage.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	collector := perf.NewCollector(perf.DefaultRingSize)
	sessions := sessionStore.NewSQLiteStore(storage.NewTimedDB(db, collector, cfg.DB.SlowQuery))

	client, err := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Prefix:  cfg.API.Prefix,
		Timeout: cfg.API.Timeout,
	}, collector)
	if err != nil {
		return err
	}

	sweepStopCh := make(chan struct{})
	orchestrators.StartSessionSweeper(orchestrators.SweepSessionsDeps{Store: sessions}, cfg.DB.SweepPeriod, sweepStopCh)
	defer close(sweepStopCh)

	handler, err := web.NewMux(ctx, web.Deps{
		API:         client,
		Sessions:    sessions,
		Collector:   collector,
		CSRFKey:     cfg.CSRFKeyBytes(),
		Production:  cfg.IsProduction(),
		SlowRequest: time.Duration(cfg.SlowRequestMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "config", cfg, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_stop", "reason", "signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
