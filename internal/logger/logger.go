// Package logger builds the process slog.Logger: JSON or text on stdout,
// request ids pulled from the context, and Sentry fan-out when a DSN is set.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Format      string
	Level       string
	SentryDSN   string
	Environment string
	Output      io.Writer
}

// New returns the logger and a flush func to call before exit.
func New(opts Options) (*slog.Logger, func()) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var base slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		base = slog.NewTextHandler(out, hopts)
	} else {
		base = slog.NewJSONHandler(out, hopts)
	}

	flush := func() {}
	if opts.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Environment,
			EnableLogs:  true,
		}); err != nil {
			slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			sentryHandler := sentryslog.Option{
				EventLevel: []slog.Level{slog.LevelError},
				LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
			}.NewSentryHandler(context.Background())
			base = newMultiHandler(base, sentryHandler)
			flush = func() { sentry.Flush(2 * time.Second) }
		}
	}

	return slog.New(newDecorator(base, RequestID)), flush
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RequestID adds the chi request id, when present, to every record.
func RequestID(ctx context.Context) (slog.Attr, bool) {
	id := chimw.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}
