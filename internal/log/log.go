// Package log wraps log/slog with a process-wide logger for taskenv.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LevelEnvVar selects the default level when no flag overrides it.
const LevelEnvVar = "TASKENV_LOG_LEVEL"

var (
	logger *slog.Logger
	mu     sync.RWMutex
)

func init() {
	// Default to text handler on stderr
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: LevelFromEnv(LevelWarn),
	}))
}

// Level represents logging levels
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Options configures the logger
type Options struct {
	Level   Level
	JSON    bool
	Output  io.Writer
	Verbose bool
}

// Configure sets up the global logger
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	level := opts.Level
	if opts.Verbose {
		level = LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(output, handlerOpts)
	}

	logger = slog.New(handler)
}

// ParseLevel maps debug/info/warn/error (case-insensitive) to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// LevelFromEnv reads TASKENV_LOG_LEVEL, returning def when unset or invalid.
func LevelFromEnv(def Level) Level {
	if lvl, ok := ParseLevel(os.Getenv(LevelEnvVar)); ok {
		return lvl
	}
	return def
}

// Logger returns the global logger
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// Err is a helper for logging errors
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

// TaskID is a helper for logging task IDs
func TaskID(id string) slog.Attr {
	return slog.String("task_id", id)
}

// EnvID is a helper for logging environment identities
func EnvID(id string) slog.Attr {
	return slog.String("env_id", id)
}

// Path is a helper for logging filesystem paths
func Path(p string) slog.Attr {
	return slog.String("path", p)
}
