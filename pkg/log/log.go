// Package log provides the leveled logger used across the module, backed by zap.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging capability injected into components.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warning(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	// With returns a child logger which adds key and value to every entry.
	With(key string, value interface{}) Logger
	Sync() error
}

// DefaultLogger writes debug entries to stderr in development format.
var DefaultLogger Logger = newDefaultLogger()

type zapLogger struct {
	sugar *zap.SugaredLogger
}

func newDefaultLogger() Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return NewSilentLogger()
	}
	return &zapLogger{sugar: logger.Sugar()}
}

// NewDefaultProductionLogger returns a JSON logger at info level.
func NewDefaultProductionLogger() (Logger, error) {
	return NewLogger("info")
}

// NewLogger returns a JSON logger at the given level.
func NewLogger(level string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: logger.Sugar()}, nil
}

// NewSilentLogger returns a logger which discards everything.
func NewSilentLogger() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

// ParseLevel maps configuration level names to zap levels. Trace is treated as debug.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

func (l *zapLogger) Debug(args ...interface{})   { l.sugar.Debug(args...) }
func (l *zapLogger) Info(args ...interface{})    { l.sugar.Info(args...) }
func (l *zapLogger) Warning(args ...interface{}) { l.sugar.Warn(args...) }
func (l *zapLogger) Error(args ...interface{})   { l.sugar.Error(args...) }

func (l *zapLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *zapLogger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *zapLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *zapLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

func (l *zapLogger) With(key string, value interface{}) Logger {
	return &zapLogger{sugar: l.sugar.With(key, value)}
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}
