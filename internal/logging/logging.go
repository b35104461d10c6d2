// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"taskdash/internal/config"
)

// Options are the inputs that do not live in the config file.
type Options struct {
	// Verbose forces debug level.
	Verbose bool
	// Interactive is set for the TUI. Without a log file the logger is a no-op
	// so log lines never land on the alt-screen.
	Interactive bool
}

// New builds a production (JSON) logger from the logging config.
func New(cfg config.LoggingConfig, opts Options) (*zap.Logger, error) {
	file := strings.TrimSpace(cfg.File)
	if opts.Interactive && file == "" {
		return zap.NewNop(), nil
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if file != "" {
		zc.OutputPaths = []string{filepath.Clean(file)}
		zc.ErrorOutputPaths = []string{filepath.Clean(file)}
	} else {
		zc.OutputPaths = []string{"stderr"}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("taskdash"), nil
}

// ParseLevel maps debug|info|warn|error; empty is info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %q", s)
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
