// Package handler is the serverless entry point for POST /api/send-resume.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sanjanag197/web-portfolio/internal/app"
	"github.com/sanjanag197/web-portfolio/internal/config"
	"github.com/sanjanag197/web-portfolio/internal/httpapi"
	"github.com/sanjanag197/web-portfolio/internal/logging"
)

var (
	initOnce sync.Once
	entry    http.Handler
)

// setup builds the handler once per warm instance. The serverless variant
// sends one message to the owner with the requester copied, unless
// DELIVERY_POLICY says otherwise.
func setup() http.Handler {
	initOnce.Do(func() {
		cfg, err := config.Load(
			config.WithResumePath(config.ServerlessResumePath),
			config.WithDeliveryPolicy("cc"),
		)
		if err != nil {
			entry = failed(err)
			return
		}

		logging.Setup(logging.Options{
			Level:             cfg.Logging.Level,
			SentryDSN:         cfg.Sentry.DSN,
			SentryEnvironment: cfg.Sentry.Environment,
		})

		h, err := app.NewHandler(context.Background(), cfg, app.Deps{Logger: slog.Default()})
		if err != nil {
			entry = failed(err)
			return
		}
		entry = httpapi.CORS(h)
		slog.Info("resume handler initialized", "provider", cfg.Provider)
	})
	return entry
}

// failed logs the startup error and serves the endpoint without a provider.
func failed(err error) http.Handler {
	slog.Error("failed to initialize resume handler", "error", err)
	return httpapi.CORS(httpapi.Unavailable())
}

// Handler is invoked by the serverless runtime for every request.
func Handler(w http.ResponseWriter, r *http.Request) {
	setup().ServeHTTP(w, r)
}
