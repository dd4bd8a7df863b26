// Package logging builds the process logger: JSON records on stdout, fanned
// out to Sentry when a DSN is configured.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Options configures New.
type Options struct {
	Level             string
	SentryDSN         string
	SentryEnvironment string
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a JSON logger. With a Sentry DSN, errors become Sentry events
// and warnings and errors are stored as Sentry logs. A failed Sentry init
// falls back to stdout only. The returned flush function drains buffered
// Sentry events and is safe to call when Sentry is disabled.
func New(opts Options) (*slog.Logger, func()) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	stdoutHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	noop := func() {}

	if opts.SentryDSN == "" {
		return slog.New(stdoutHandler), noop
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Environment: opts.SentryEnvironment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdoutHandler).Error("failed to initialize Sentry", "error", err)
		return slog.New(stdoutHandler), noop
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	flush := func() { sentry.Flush(2 * time.Second) }
	return slog.New(newMultiHandler(stdoutHandler, sentryHandler)), flush
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(opts Options) func() {
	logger, flush := New(opts)
	slog.SetDefault(logger)
	return flush
}
