// Package observability builds the logger, metrics collector, and tracer
// shared by every component.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects the encoder and starting level.
type LoggerConfig struct {
	Production bool
	Level      string
}

// NewLogger returns a JSON logger in production and a console logger
// otherwise. The returned level can be changed while the logger is in use.
func NewLogger(cfg LoggerConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, level, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	} else if !cfg.Production {
		level.SetLevel(zapcore.DebugLevel)
	}

	var zcfg zap.Config
	if cfg.Production {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, level, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, level, nil
}

// SetLevel parses and applies a new level.
func SetLevel(level zap.AtomicLevel, name string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	level.SetLevel(l)
	return nil
}
