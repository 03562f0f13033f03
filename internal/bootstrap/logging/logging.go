package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

type loggerKey struct{}
type attrsKey struct{}

var (
	fallback     *slog.Logger
	fallbackOnce sync.Once
)

func base() *slog.Logger {
	fallbackOnce.Do(func() {
		fallback = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	})
	return fallback
}

// WithLogger stores logger on the context; Logger falls back to a process-wide
// JSON handler when none is set.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithAttrs accumulates attrs on the context; later keys override earlier ones.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(attrs) == 0 {
		return ctx
	}
	return context.WithValue(ctx, attrsKey{}, merge(ctxAttrs(ctx), attrs))
}

func Logger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return base()
}

func ctxAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

func emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	Logger(ctx).LogAttrs(ctx, level, msg, merge(ctxAttrs(ctx), attrs)...)
}

func merge(bases, extra []slog.Attr) []slog.Attr {
	if len(bases) == 0 {
		return append([]slog.Attr(nil), extra...)
	}
	merged := append([]slog.Attr(nil), bases...)
	index := make(map[string]int, len(merged))
	for i, attr := range merged {
		index[attr.Key] = i
	}
	for _, attr := range extra {
		if i, ok := index[attr.Key]; ok && attr.Key != "" {
			merged[i] = attr
			continue
		}
		merged = append(merged, attr)
		index[attr.Key] = len(merged) - 1
	}
	return merged
}
