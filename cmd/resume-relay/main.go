// Package main is the entry point for the standalone resume relay server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanjanag197/web-portfolio/internal/app"
	"github.com/sanjanag197/web-portfolio/internal/config"
	"github.com/sanjanag197/web-portfolio/internal/httpapi"
	"github.com/sanjanag197/web-portfolio/internal/logging"
	"github.com/sanjanag197/web-portfolio/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	envFile := flag.String("env-file", ".env", "path to a .env file loaded before reading the environment")
	flag.Parse()

	config.LoadDotEnv(*envFile)

	// The standalone server notifies the owner and thanks the requester
	// separately unless DELIVERY_POLICY says otherwise.
	cfg, err := loadConfig(*configPath, config.WithDeliveryPolicy("separate"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	flush := logging.Setup(logging.Options{
		Level:             cfg.Logging.Level,
		SentryDSN:         cfg.Sentry.DSN,
		SentryEnvironment: cfg.Sentry.Environment,
	})
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var m *metrics.Metrics
	if cfg.Server.MetricsEnabled {
		m = metrics.New()
	}

	handler, err := app.NewHandler(ctx, cfg, app.Deps{Logger: slog.Default(), Metrics: m})
	if err != nil {
		slog.Error("failed to build resume handler", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.NewRouter(httpapi.RouterOptions{
			Handler:   handler,
			Logger:    slog.Default(),
			Metrics:   m,
			StaticDir: cfg.Server.StaticDir,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting resume relay",
		"listen", server.Addr,
		"provider", cfg.Provider,
		"delivery_configured", cfg.DeliveryConfigured(),
		"delivery_policy", cfg.DeliveryPolicy,
		"resume_path", cfg.Mail.ResumePath,
		"static_dir", cfg.Server.StaticDir,
		"metrics_enabled", cfg.Server.MetricsEnabled,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			flush()
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("received signal, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	slog.Info("resume relay stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string, opts ...config.Option) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path, opts...)
	}
	return config.Load(opts...)
}
