// Package logctx logs with fields carried by a context.
package logctx

import (
	"context"

	"github.com/nguyentranbao-ct/storefront/pkg/logger"
	"go.uber.org/zap"
)

type fieldsKey struct{}

// With returns a context whose log lines carry the given key/value pairs
// in addition to the ones already attached.
func With(ctx context.Context, keysAndValues ...any) context.Context {
	prev, _ := ctx.Value(fieldsKey{}).([]any)
	fields := make([]any, 0, len(prev)+len(keysAndValues))
	fields = append(fields, prev...)
	fields = append(fields, keysAndValues...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// Fields returns the key/value pairs attached to ctx.
func Fields(ctx context.Context) []any {
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

func get(ctx context.Context) *zap.SugaredLogger {
	l := logger.S()
	if fields := Fields(ctx); len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}

func Debugw(ctx context.Context, msg string, keysAndValues ...any) {
	get(ctx).Debugw(msg, keysAndValues...)
}

func Infow(ctx context.Context, msg string, keysAndValues ...any) {
	get(ctx).Infow(msg, keysAndValues...)
}

func Warnw(ctx context.Context, msg string, keysAndValues ...any) {
	get(ctx).Warnw(msg, keysAndValues...)
}

func Errorw(ctx context.Context, msg string, keysAndValues ...any) {
	get(ctx).Errorw(msg, keysAndValues...)
}

func Infof(ctx context.Context, template string, args ...any) {
	get(ctx).Infof(template, args...)
}

func Warnf(ctx context.Context, template string, args ...any) {
	get(ctx).Warnf(template, args...)
}

func Errorf(ctx context.Context, template string, args ...any) {
	get(ctx).Errorf(template, args...)
}

// Logw logs at the given level.
func Logw(ctx context.Context, level logger.Level, msg string, keysAndValues ...any) {
	switch {
	case level >= logger.ErrorLevel:
		Errorw(ctx, msg, keysAndValues...)
	case level == logger.WarnLevel:
		Warnw(ctx, msg, keysAndValues...)
	case level == logger.InfoLevel:
		Infow(ctx, msg, keysAndValues...)
	default:
		Debugw(ctx, msg, keysAndValues...)
	}
}
