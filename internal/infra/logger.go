package infra

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// logLevels maps config strings to slog levels
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger creates a JSON slog.Logger writing to stdout and a rotated
// log file. Engine pass reports and rate-fetch failures all go through
// this logger; nothing is ever surfaced to storefront visitors.
func NewLogger(cfg *Config) *slog.Logger {
	level, ok := logLevels[cfg.Logging.Level]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// no log directory: stderr still keeps the engine observable
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "pricefx.log"),
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     28, // Days
		Compress:   true,
	}

	return slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotated), opts))
}
