package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process JSON logger and installs it as the slog default
func NewLogger(cfg *Config) *slog.Logger {
	var level slog.Level

	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h).With("env", cfg.Env)
	slog.SetDefault(logger)
	return logger
}
