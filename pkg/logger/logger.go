// Package logger provides a structured, levelled logger built on log/slog.
//
// Production (APP_ENV=production) emits JSON for log aggregators; everything
// else gets the human-readable text handler at debug level.
package logger

import (
	"log/slog"
	"os"

	"github.com/slicemaster/storefront/config"
)

var L *slog.Logger

func init() {
	var handler slog.Handler

	switch config.AppEnv() {
	case "production", "prod":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// With returns a child logger pre-tagged with the given attributes, typically
// a component name:
//
//	log := logger.With("component", "orderfeed")
func With(args ...any) *slog.Logger { return L.With(args...) }

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
