// Package trace carries a request ID and a request-scoped logger in the context.
package trace

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qiniu/x/xlog"
)

// TraceID identifies one solve request across log lines.
type TraceID string

// Prefixes for the sources that start a trace.
const (
	TracePrefix   = "bernoulli"
	HTTPPrefix    = "http"
	CLIPrefix     = "cli"
	ExamplePrefix = "example"
)

// NewTraceID returns a fresh ID such as "http_bernoulli_3f2c...".
func NewTraceID(source string) TraceID {
	return TraceID(fmt.Sprintf("%s_%s_%s", source, TracePrefix, uuid.NewString()))
}

type contextKey string

const traceLoggerKey contextKey = "trace_logger"

// NewContext attaches a logger tagged with traceID to ctx.
func NewContext(ctx context.Context, traceID TraceID) context.Context {
	logger := xlog.New(string(traceID))
	return context.WithValue(ctx, traceLoggerKey, logger)
}

// FromContext returns the request logger, or nil when none was attached.
func FromContext(ctx context.Context) *xlog.Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(traceLoggerKey).(*xlog.Logger); ok {
		return logger
	}
	return nil
}

// GetTraceID returns the ID attached to ctx, or "" when there is none.
func GetTraceID(ctx context.Context) TraceID {
	logger := FromContext(ctx)
	if logger == nil {
		return ""
	}
	return TraceID(logger.ReqId)
}

func Info(ctx context.Context, format string, args ...interface{}) {
	if logger := FromContext(ctx); logger != nil {
		logger.Infof(format, args...)
	}
}

func Warn(ctx context.Context, format string, args ...interface{}) {
	if logger := FromContext(ctx); logger != nil {
		logger.Warnf(format, args...)
	}
}

func Error(ctx context.Context, format string, args ...interface{}) {
	if logger := FromContext(ctx); logger != nil {
		logger.Errorf(format, args...)
	}
}

func Debug(ctx context.Context, format string, args ...interface{}) {
	if logger := FromContext(ctx); logger != nil {
		logger.Debugf(format, args...)
	}
}
