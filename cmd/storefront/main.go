package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/shopper"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		registry *prometheus.Registry
		recorder *metrics.Storefront
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewStorefront(registry)
	}

	sessionID := uuid.NewString()
	ctx = logg.WithSessionID(ctx, sessionID)

	b, err := openBackends(ctx, cfg, logg, sessionID)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}

	kv := storage.NewAdapter(b.durable, b.session, storage.AdapterOptions{Logger: logg.Named("storage"), Metrics: recorder})
	defer func() {
		if err := multierr.Combine(kv.Close(), b.close()); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	sess := shopper.New(ctx, kv, shopper.Options{
		Logger:           logg,
		Metrics:          recorder,
		StrictValidation: cfg.Checkout.StrictValidation,
	})
	if err := sess.Cart().Recovered(); err != nil {
		logg.Warn(logg.WithField(ctx, "reason", err.Error()), "cart started empty")
	}

	products := catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithTimeout(cfg.Catalog.Timeout),
	)

	deps := routes.Deps{
		Config:    cfg,
		Logger:    logg,
		Session:   sess,
		SessionID: sessionID,
		Catalog:   products,
		Pingers:   b.pingers(),
	}
	if registry != nil {
		deps.Gatherer = registry
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"durable": cfg.Storage.Driver,
		"redis":   cfg.Redis.Enabled(),
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down storefront server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
