package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type (
	ctxRequestIDKey struct{}
	ctxLoggerKey    struct{}
	ctxTimeKey      struct{}
)

// TimeFunc replaces the clock of a request. Tests set a fixed one.
type TimeFunc func() time.Time

// CtxRequestID returns the request ID of ctx. A new ID is generated and attached if ctx has none.
func CtxRequestID(ctx context.Context) (types.RequestID, context.Context) {
	if id, ok := ctx.Value(ctxRequestIDKey{}).(types.RequestID); ok {
		return id, ctx
	}

	newID := types.NewRequestID()
	return newID, context.WithValue(ctx, ctxRequestIDKey{}, newID)
}

func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger of ctx, or the default logger.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}

// CtxTime returns now by the clock of ctx.
func CtxTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ctxTimeKey{}).(TimeFunc); ok {
		return t()
	}
	return time.Now()
}

func CtxWithTime(ctx context.Context, timeFunc TimeFunc) context.Context {
	return context.WithValue(ctx, ctxTimeKey{}, timeFunc)
}

// Detach returns a context that is never cancelled with ctx but keeps its
// logger, request ID and clock. Background work started by a request uses it.
func Detach(ctx context.Context) context.Context {
	dst := With(context.Background(), From(ctx))

	if reqID, ok := ctx.Value(ctxRequestIDKey{}).(types.RequestID); ok {
		dst = context.WithValue(dst, ctxRequestIDKey{}, reqID)
	}
	if timeFunc, ok := ctx.Value(ctxTimeKey{}).(TimeFunc); ok {
		dst = context.WithValue(dst, ctxTimeKey{}, timeFunc)
	}
	return dst
}
