package logx

import (
	"context"
	"strings"

	"btcprice-service/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
)

type ctxKey struct{}

func init() {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	appCfg := config.Load()
	if appCfg.LogLevel != "" {
		_ = zapCfg.Level.UnmarshalText([]byte(strings.ToLower(appCfg.LogLevel)))
	}

	var err error
	logger, err = zapCfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}

// WithFields returns a context carrying a logger enriched with the given fields.
// Fields accumulate across nested calls.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, ctxKey{}, FromContext(ctx).With(fields...))
}

// FromContext returns the request-scoped logger, or the package logger when none is set.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return logger
}
