package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the daemon logger: JSON lines on stdout.
func NewLogger(level string) *slog.Logger {
	return New(os.Stdout, level, "json")
}

// New builds a logger with an explicit sink and format. The CLI uses the
// text format on stderr so JSON report output on stdout stays parseable.
func New(w io.Writer, level string, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
