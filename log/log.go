// Package log provides the small structured-logging surface used by the
// simulation core. It mirrors the geth/zap-flavored Logger shape common
// across the consensus stack this module grew out of, trimmed to the
// handful of methods the core actually calls.
package log

import "go.uber.org/zap"

// Logger is a structured, leveled logger. With returns a derived logger
// carrying the given fields on every subsequent call.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	z *zap.Logger
}

// NewZap wraps a *zap.Logger as a Logger.
func NewZap(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

// NewProduction returns a Logger backed by zap's production encoder
// config, falling back to a no-op logger if construction fails.
func NewProduction() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return NewNoOp()
	}
	return NewZap(z)
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

type noOp struct{}

// NewNoOp returns a Logger that discards everything. It is the default
// for library callers that don't want output.
func NewNoOp() Logger { return noOp{} }

func (noOp) Debug(string, ...zap.Field) {}
func (noOp) Info(string, ...zap.Field)  {}
func (noOp) Warn(string, ...zap.Field)  {}
func (noOp) Error(string, ...zap.Field) {}
func (noOp) With(...zap.Field) Logger   { return noOp{} }
