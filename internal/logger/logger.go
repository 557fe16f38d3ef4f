package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	// default logger instance
	defaultLogger zerolog.Logger
)

// initializes the logger based on environment
func init() {
	Configure(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
}

// rebuilds the default logger for the given environment and optional level override
func Configure(env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer
	lvl := zerolog.DebugLevel

	if env == "production" {
		// production: JSON output for structured logging
		out = os.Stdout
		lvl = zerolog.InfoLevel
	} else {
		// development: human-readable console output
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}

	defaultLogger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// replaces the output writer, used by tests to capture log lines
func SetOutput(w io.Writer) {
	defaultLogger = defaultLogger.Output(w)
}

// returns the default logger instance
func Default() *zerolog.Logger {
	return &defaultLogger
}

// creates a logger with additional context fields
func With(args ...any) *zerolog.Logger {
	l := defaultLogger.With().Fields(args).Logger()
	return &l
}

// creates a logger with context
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &defaultLogger
	}

	if l, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok {
		return l
	}

	return &defaultLogger
}

// adds logger to context
func WithContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// helper type for context key
type loggerKey struct{}

// convenience functions for common log levels

// logs a debug message
func Debug(msg string, args ...any) {
	defaultLogger.Debug().Fields(args).Msg(msg)
}

// logs an info message
func Info(msg string, args ...any) {
	defaultLogger.Info().Fields(args).Msg(msg)
}

// logs a warning message
func Warn(msg string, args ...any) {
	defaultLogger.Warn().Fields(args).Msg(msg)
}

// logs an error message
func Error(msg string, args ...any) {
	defaultLogger.Error().Fields(args).Msg(msg)
}

// logs an error with context
func ErrorErr(err error, msg string, args ...any) {
	defaultLogger.Error().Err(err).Fields(args).Msg(msg)
}

// logs a warning with an attached error
func WarnErr(err error, msg string, args ...any) {
	defaultLogger.Warn().Err(err).Fields(args).Msg(msg)
}

// logs a fatal error and exits (for CLI tools)
func Fatal(msg string, args ...any) {
	defaultLogger.Error().Fields(args).Msg(msg)
	os.Exit(1)
}

// logs a fatal error with error and exits (for CLI tools)
func FatalErr(err error, msg string, args ...any) {
	defaultLogger.Error().Err(err).Fields(args).Msg(msg)
	os.Exit(1)
}
