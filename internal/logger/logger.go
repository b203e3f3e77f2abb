package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// FormatEnv selects the handler: "json" for JSON lines, anything else for text.
const FormatEnv = "SPACESAVER_LOG_FORMAT"

var (
	level = new(slog.LevelVar)
	log   *slog.Logger
)

func init() {
	if os.Getenv("DEBUG") != "" {
		level.Set(slog.LevelDebug)
	}
	log = newLogger(os.Stdout, level, os.Getenv(FormatEnv))
}

func newLogger(w io.Writer, leveler slog.Leveler, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: leveler}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetDebug switches debug output on or off for every later log call.
func SetDebug(on bool) {
	if on {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelInfo)
}

// SetOutput redirects log output. The level is kept and the format is read from FormatEnv again.
func SetOutput(w io.Writer) {
	log = newLogger(w, level, os.Getenv(FormatEnv))
}

// Info logs at info level.
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}
