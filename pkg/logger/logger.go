package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

// Init initializes the logger. format is "json" or "console".
func Init(level string, format string) error {
	var config zap.Config

	if format == "json" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	built, err := config.Build()
	if err != nil {
		return err
	}

	current.Store(built)
	zap.ReplaceGlobals(built)
	return nil
}

// Get returns the logger set by Init, or zap's global logger before Init.
func Get() *zap.Logger {
	if log := current.Load(); log != nil {
		return log
	}
	return zap.L()
}

// Named returns a child logger tagged with a component name.
func Named(component string) *zap.Logger {
	return Get().With(zap.String("component", component))
}

// Sync flushes any buffered log entries
func Sync() error {
	if log := current.Load(); log != nil {
		return log.Sync()
	}
	return nil
}
