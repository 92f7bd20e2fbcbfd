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
)

// Config selects the level, output format and Sentry sink.
type Config struct {
	Level             string `env:"LOG_LEVEL" envDefault:"info"`
	Format            string `env:"LOG_FORMAT" envDefault:"json"`
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
}

// New returns the logger and a flush func that drains buffered Sentry
// events. Without a DSN only stdout is used.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, func()) {
	return newLogger(os.Stdout, cfg, extractors...)
}

func newLogger(w io.Writer, cfg Config, extractors ...ContextExtractor) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var out slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		out = slog.NewTextHandler(w, opts)
	}

	noop := func() {}
	if cfg.SentryDSN == "" {
		return slog.New(WithContext(out, extractors...)), noop
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		EnableLogs:  true,
	}); err != nil {
		log := slog.New(WithContext(out, extractors...))
		log.Error("sentry disabled", slog.String("error", err.Error()))
		return log, noop
	}

	// Errors become Sentry issues, warnings are kept as searchable logs.
	sink := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	flush := func() { sentry.Flush(2 * time.Second) }
	return slog.New(WithContext(fanout{out, sink}, extractors...)), flush
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
