package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
)

var _ primary.Logger = (*ZapLogger)(nil)

// ZapLogger implements the Logger interface with zap
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// NewZapLogger creates a new zap logger writing JSON to stderr at the given level.
// Unknown levels fall back to info.
func NewZapLogger(level string) *ZapLogger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	return &ZapLogger{
		logger: logger.Sugar(),
	}
}

// NewFromZap wraps an existing zap logger, e.g. one built by zaptest.
func NewFromZap(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger.Sugar()}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *ZapLogger {
	return NewFromZap(zap.NewNop())
}

// ParseLevel maps debug|info|warn|error to a zap level.
func ParseLevel(level string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// With returns a child logger that always carries the given key/value pairs.
func (l *ZapLogger) With(args ...interface{}) *ZapLogger {
	return &ZapLogger{logger: l.logger.With(args...)}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// Info logs an info message
func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.logger.Infow(msg, args...)
}

// Error logs an error message
func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.logger.Errorw(msg, args...)
}

// Debug logs a debug message
func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debugw(msg, args...)
}

// Warn logs a warning message
func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warnw(msg, args...)
}
