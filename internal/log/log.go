// Package log is the process-wide structured logger for codedoctor.
//
// Diagnostics go to stderr through log/slog; user-facing output is written
// by the ui package and never passes through here.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.Level(-8)

// Verbosity levels accepted by -v.
const (
	VerbosityError = 0
	VerbosityWarn  = 1
	VerbosityInfo  = 2
	VerbosityDebug = 3
	VerbosityTrace = 4
)

var (
	logger    atomic.Pointer[slog.Logger]
	level     = new(slog.LevelVar)
	verbosity atomic.Int32
)

func init() {
	verbosity.Store(VerbosityWarn)
	level.Set(slog.LevelWarn)
	logger.Store(slog.New(NewHandler(os.Stderr, "text")))
}

// Init installs the global logger. format is "text" or "json".
func Init(v int, format string) {
	InitWithWriter(v, format, os.Stderr)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(v int, format string, w io.Writer) {
	verbosity.Store(int32(v))
	level.Set(VerbosityToLevel(v))
	l := slog.New(NewHandler(w, format))
	logger.Store(l)
	slog.SetDefault(l)
}

// NewHandler builds a handler writing to w at the shared level.
func NewHandler(w io.Writer, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// VerbosityToLevel maps -v=N to a slog level.
func VerbosityToLevel(v int) slog.Level {
	switch {
	case v <= VerbosityError:
		return slog.LevelError
	case v == VerbosityWarn:
		return slog.LevelWarn
	case v == VerbosityInfo:
		return slog.LevelInfo
	case v == VerbosityDebug:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// Verbosity returns the current -v value.
func Verbosity() int {
	return int(verbosity.Load())
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logger.Load()
}

// Component returns a logger tagged with a component name.
func Component(name string) *slog.Logger {
	return logger.Load().With("component", name)
}

func Error(msg string, args ...any) { logger.Load().Error(msg, args...) }
func Warn(msg string, args ...any)  { logger.Load().Warn(msg, args...) }
func Info(msg string, args ...any)  { logger.Load().Info(msg, args...) }
func Debug(msg string, args ...any) { logger.Load().Debug(msg, args...) }

// Trace logs below debug; enabled with -v=4.
func Trace(msg string, args ...any) {
	logger.Load().Log(context.Background(), LevelTrace, msg, args...)
}

func replaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok && l <= LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
