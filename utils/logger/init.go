package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

// Options controls how the process-wide logger is built.
type Options struct {
	Level       string
	Format      string // "json" or "text"
	EnableOTel  bool
	ServiceName string
	Output      io.Writer
}

// InitLogger initializes a stdout-only logger using LOG_LEVEL and LOG_FORMAT.
func InitLogger() *slog.Logger {
	return Init(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
}

// Init builds the global logger and installs it as the slog default.
func Init(opts Options) *slog.Logger {
	level := parseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	base := newBaseHandler(out, opts.Format, level)

	var handler slog.Handler
	if opts.EnableOTel {
		handler = NewMultiHandler(level, opts.ServiceName, base)
	} else {
		handler = NewTraceContextHandler(base)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Info("Logger initialized", "otel_enabled", opts.EnableOTel, "level", level.String())

	return Logger
}

func newBaseHandler(out io.Writer, format string, level slog.Level) slog.Handler {
	hopts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(out, hopts)
	}
	return slog.NewJSONHandler(out, hopts)
}

func parseLevel(level string) slog.Level {
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

// Current returns the global logger, or the slog default before Init runs.
func Current() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}
