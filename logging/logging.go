// Package logging wraps log/slog the way core/util.go does (core.Trace
// calls slog.Log with a custom level), generalized into a small reusable
// logger plus an engine.EventFunc adapter so engine event narration goes
// through the same structured sink as everything else.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace sits just above Info, mirroring core.LevelTrace
// (slog.LevelInfo + 1), for step-by-step engine narration. A Logger whose
// minimum level is Info or LevelTrace emits it; one at Warn or above drops it.
const LevelTrace = slog.LevelInfo + 1

// Logger is a thin wrapper around *slog.Logger exposing a Trace method at
// LevelTrace, matching core.Trace's Trace(msg, args...) call shape.
type Logger struct {
	*slog.Logger
}

// New builds a Logger writing JSON records to w at minLevel.
func New(w io.Writer, minLevel slog.Level) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: minLevel})
	return &Logger{Logger: slog.New(h)}
}

// NewStderr builds a Logger writing to os.Stderr at Info level, the
// default when no rotating file sink is configured.
func NewStderr() *Logger {
	return New(os.Stderr, slog.LevelInfo)
}

// RotatingFileConfig configures a lumberjack-backed rotating log file, per
// the ambient stack's file-output option (grounded in the wider pack's
// dependency on gopkg.in/natefinch/lumberjack.v2 for its own rotation).
type RotatingFileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewRotatingFile builds a Logger backed by a lumberjack rotating file
// writer at the given minimum level.
func NewRotatingFile(cfg RotatingFileConfig, minLevel slog.Level) *Logger {
	w := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return New(w, minLevel)
}

// Trace logs msg at LevelTrace with the given key-value args, mirroring
// core/util.go's core.Trace(msg, args...) helper.
func (l *Logger) Trace(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelTrace, msg, args...)
}
