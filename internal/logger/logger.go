// Package logger provides structured logging backed by zap. Log calls take a
// context so the active trace id can be attached to every entry.
package logger

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level controls the minimum severity that is emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LoggerInterface is the logging surface consumed by the rest of the app.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, keysAndValues ...any)
	Info(ctx context.Context, msg string, keysAndValues ...any)
	Warn(ctx context.Context, msg string, keysAndValues ...any)
	Error(ctx context.Context, msg string, keysAndValues ...any)
}

// Logger implements LoggerInterface on top of a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing JSON entries to w at the given level,
// tagged with the service name.
func New(w io.Writer, level Level, service string) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zapLevel(level),
	)

	z := zap.New(core).With(zap.String("service", service))
	return &Logger{sugar: z.Sugar()}
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, withTrace(ctx, keysAndValues)...)
}

func (l *Logger) Info(ctx context.Context, msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, withTrace(ctx, keysAndValues)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, withTrace(ctx, keysAndValues)...)
}

func (l *Logger) Error(ctx context.Context, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, withTrace(ctx, keysAndValues)...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func withTrace(ctx context.Context, kv []any) []any {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		kv = append(kv, "trace_id", sc.TraceID().String())
	}
	return kv
}
