package logging

import (
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields map[string]any

// Logger is the structured logging interface used across the toolkit.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

var (
	mu         sync.RWMutex
	baseLogger *zap.Logger
	baseLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = baseLevel
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}
	baseLogger = logger
}

// SetLevel adjusts the global log level ("debug", "info", "warn", "error").
func SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	baseLevel.SetLevel(parsed)
	return nil
}

// NewDefaultLogger returns a logger without pre-attached fields.
func NewDefaultLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zapAdapter{base: baseLogger}
}

// WithFields returns a logger carrying the given fields on every entry.
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

type zapAdapter struct {
	base   *zap.Logger
	fields Fields
}

func (l *zapAdapter) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &zapAdapter{base: l.base, fields: merged}
}

func (l *zapAdapter) Debug(msg string, fields ...Fields) { l.log(zapcore.DebugLevel, msg, fields) }
func (l *zapAdapter) Info(msg string, fields ...Fields)  { l.log(zapcore.InfoLevel, msg, fields) }
func (l *zapAdapter) Warn(msg string, fields ...Fields)  { l.log(zapcore.WarnLevel, msg, fields) }
func (l *zapAdapter) Error(msg string, fields ...Fields) { l.log(zapcore.ErrorLevel, msg, fields) }

func (l *zapAdapter) log(level zapcore.Level, msg string, extra []Fields) {
	merged := make(Fields, len(l.fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range extra {
		for k, v := range f {
			merged[k] = v
		}
	}

	// Stable field order keeps console output diffable.
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zfields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zfields = append(zfields, zap.Any(k, merged[k]))
	}

	if ce := l.base.Check(level, msg); ce != nil {
		ce.Write(zfields...)
	}
}
