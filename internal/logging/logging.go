package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level names accepted by ParseLevel.
const (
	DEBUG = "DEBUG"
	INFO  = "INFO"
	WARN  = "WARN"
	ERROR = "ERROR"
)

// ParseLevel maps a level name to a slog.Level. Empty means INFO.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case DEBUG:
		return slog.LevelDebug, nil
	case INFO, "":
		return slog.LevelInfo, nil
	case WARN, "WARNING":
		return slog.LevelWarn, nil
	case ERROR:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", level)
	}
}

// New creates a structured logger writing to dest. format is "text" or "json".
func New(level, format string, dest io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(dest, opts)
	case "text", "":
		handler = slog.NewTextHandler(dest, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q (allowed: text, json)", format)
	}
	return slog.New(handler), nil
}
