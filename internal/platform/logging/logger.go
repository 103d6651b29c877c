package logging

import (
	"context"
	"os"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// Logger wraps zap with loosely-typed key/value variadics. The Context
// variants stamp trace_id and span_id from the active span so log lines
// join up with traces.
type Logger struct {
	base   *zap.Logger
	synced atomic.Bool
}

var fallback atomic.Pointer[Logger]

func init() {
	fallback.Store(NewNop())
}

func NewJSON(level Level) *Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.MessageKey = "msg"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder
	enc.FunctionKey = zapcore.OmitKey

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(os.Stdout), level)
	return FromZap(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
}

func NewNop() *Logger {
	return &Logger{base: zap.NewNop()}
}

func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		return NewNop()
	}
	return &Logger{base: z}
}

func Default() *Logger {
	if l := fallback.Load(); l != nil {
		return l
	}
	return NewNop()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	fallback.Store(logger)
}

func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.base == nil {
		return zap.NewNop()
	}
	return l.base
}

// Sync flushes buffered entries once; repeated calls are no-ops.
func (l *Logger) Sync() error {
	if l == nil || l.base == nil || !l.synced.CompareAndSwap(false, true) {
		return nil
	}
	return l.base.Sync()
}

func (l *Logger) With(args ...any) *Logger {
	return FromZap(l.Zap().With(toFields(args, nil)...))
}

func (l *Logger) Debug(msg string, args ...any)                          { l.emit(nil, LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)                           { l.emit(nil, LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)                           { l.emit(nil, LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any)                          { l.emit(nil, LevelError, msg, args) }
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) { l.emit(ctx, LevelDebug, msg, args) }
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any)  { l.emit(ctx, LevelInfo, msg, args) }
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any)  { l.emit(ctx, LevelWarn, msg, args) }
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) { l.emit(ctx, LevelError, msg, args) }

func (l *Logger) emit(ctx context.Context, level Level, msg string, args []any) {
	logger := l
	if logger == nil {
		logger = Default()
	}
	entry := logger.Zap().Check(level, msg)
	if entry == nil {
		return
	}
	entry.Write(toFields(args, ctx)...)
}

// toFields converts alternating key/value args into zap fields. Error
// values become named errors; a trailing key without a value is kept
// with a nil payload rather than dropped.
func toFields(args []any, ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, len(args)/2+2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "arg"
		}
		if i+1 >= len(args) {
			fields = append(fields, zap.Any(key, nil))
			break
		}
		switch v := args[i+1].(type) {
		case error:
			fields = append(fields, zap.NamedError(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
	}

	return fields
}
