package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger wraps slog with trace correlation. It is constructed once in
// bootstrap and passed to components explicitly; there is no package-level
// logger state.
type Logger struct {
	slog     *slog.Logger
	detailed bool
	tracing  bool
}

// Options controls handler construction.
type Options struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or text
	DetailedLogging bool
	TracingEnabled  bool
}

// New builds a Logger writing to w.
func New(w io.Writer, opts Options) *Logger {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return &Logger{
		slog:     slog.New(handler),
		detailed: opts.DetailedLogging,
		tracing:  opts.TracingEnabled,
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs only when detailed logging is enabled.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	if !l.detailed {
		return
	}
	l.log(ctx, slog.LevelDebug, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, args...)
}

// ErrorWithErr logs an error message and records it on the active span.
func (l *Logger) ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	if l.tracing {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	l.log(ctx, slog.LevelError, msg, append([]any{"error", err}, args...)...)
}

// APICall records one structured call-result event for the log sink:
// method, path, status (or error) and duration.
func (l *Logger) APICall(ctx context.Context, method, path string, status int, duration time.Duration, err error) {
	args := []any{
		"method", method,
		"path", path,
		"duration_ms", duration.Milliseconds(),
	}
	if status > 0 {
		args = append(args, "status", status)
	}
	if err != nil {
		args = append(args, "error", err)
		l.log(ctx, slog.LevelWarn, "api call failed", args...)
		return
	}
	l.log(ctx, slog.LevelDebug, "api call", args...)
}

// IsDebugEnabled reports whether detailed logging is on.
func (l *Logger) IsDebugEnabled() bool {
	return l.detailed
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if l.tracing {
		span := trace.SpanFromContext(ctx)
		if sc := span.SpanContext(); sc.IsValid() {
			args = append([]any{
				"trace_id", sc.TraceID().String(),
				"span_id", sc.SpanID().String(),
			}, args...)
		}
	}
	l.slog.Log(ctx, level, msg, args...)
}
