package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/wassimk/elgato-light/internal/infrastructure/config"
)

// Logger wraps slog.Logger with elgato-light default fields.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a new Logger with the specified configuration.
//
// Parameters:
//   - cfg: Logging configuration
//   - version: Application version for default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output *os.File
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	default:
		output = os.Stderr
	}

	format := strings.ToLower(cfg.Format)
	if format == "auto" || format == "" {
		format = "json"
		if term.IsTerminal(int(output.Fd())) {
			format = "text"
		}
	}

	return NewWithWriter(output, format, cfg.Level, version)
}

// NewWithWriter builds a Logger on an arbitrary writer. format must be
// "json" or "text"; anything else falls back to JSON.
func NewWithWriter(w io.Writer, format, level, version string) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", config.AppName),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to warn if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	log := logger.With("component", "discovery")
//	log.Debug("browse started") // Includes component=discovery
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default creates a default logger for use before configuration is loaded.
// It writes warnings and errors to stderr.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "warn",
		Format: "auto",
		Output: "stderr",
	}, "dev")
}

// Discard returns a Logger that drops everything. Tests use it.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
