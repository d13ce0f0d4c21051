// Package log provides a structured logging interface for the bikedash dashboard.
//
// The Logger interface mirrors the method set of log/slog so that the
// concrete backend can be swapped. Two backends ship with the package: the
// process-wide slog handler installed by SetupLogger, and a zerolog-backed
// Logger used by long-lived components such as the HTTP server and the
// dataset cache.
//
// Example usage:
//
//	logger := log.NewZerologLogger(os.Stdout, log.LevelInfo).With(
//	    log.ComponentKey, "dataset",
//	)
//	logger.Info("dataset loaded",
//	    log.PathKey, "all_data.csv",
//	    log.RowsKey, 17379,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
type Logger interface {
	// Debug logs a debug-level message with optional key-value fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional key-value fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional key-value fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it
	// is attached as the "error" attribute together with its stack trace.
	//
	// Example:
	//   logger.Error("render failed",
	//       err,
	//       log.ViewKey, "factors",
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                {}
func (nopLogger) Info(string, ...any)                 {}
func (nopLogger) Warn(string, ...any)                 {}
func (nopLogger) Error(string, ...any)                {}
func (n nopLogger) With(...any) Logger                { return n }
func (nopLogger) Enabled(context.Context, Level) bool { return false }
