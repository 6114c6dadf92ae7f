package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/finnova-banking-ledger/internal/config"
)

// NewLogger builds the JSON logger shared by every component of a binary
func NewLogger(cfg *config.Config) *slog.Logger {
	return New(os.Stdout, cfg)
}

// New writes JSON records to w, tagged with the application name and environment
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})
	logger := slog.New(handler).With(
		"service", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	logger.Info("logger initialized", "log_level", level.String())
	return logger
}

// ParseLevel maps a config level name to a slog level, defaulting to info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
