package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys used by the logger
type ContextKey string

const (
	// LoggerKey is the context key for the logger instance
	LoggerKey ContextKey = "logger"
)

// Config selects the level and the optional file sink.
type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New creates a console logger on stderr at info level
func New() zerolog.Logger {
	return NewWithWriter(consoleWriter())
}

// NewWithWriter creates a new structured logger with a custom writer
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// Init builds the process logger: console on stderr plus, when cfg.File is
// set, a size-rotated plain JSON log file. The returned closer is nil when no
// file was opened.
func Init(cfg Config) (zerolog.Logger, io.Closer, error) {
	writers := []io.Writer{consoleWriter()}

	var closer io.Closer
	if strings.TrimSpace(cfg.File) != "" {
		file, err := OpenLogFile(cfg.File, cfg.MaxSizeMB, cfg.MaxBackups)
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		closer = file
		writers = append(writers, file)
	}

	log := NewWithWriter(zerolog.MultiLevelWriter(writers...)).Level(ParseLevel(cfg.Level))
	return log, closer, nil
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from the context or returns a default logger
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return New()
}
