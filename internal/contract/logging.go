package contract

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/huangsam/codescore/schema"
)

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s'. must be debug, info, warn or error", s)
	}
}

// NewLogger builds the structured logger shared by the server, webhook and analyzer.
func NewLogger(w io.Writer, level string, format schema.LogFormat) *slog.Logger {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == schema.JSONLog {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "codescore")
}

// DiscardLogger returns a logger that drops everything, for tests and quiet CLI paths.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
