package batch

import (
	"context"
	"time"
)

type executionContextKeyType struct{}

var executionContextKey = executionContextKeyType{}

// executionContext aggregates per-call options carried on the context.
type executionContext struct {
	logger *loggingConfig
	now    time.Time
}

// withExecutionContext returns a context holding a copy of the current
// execution context, so values set on the copy do not leak into parents.
func withExecutionContext(ctx context.Context) (context.Context, *executionContext) {
	ec := &executionContext{}
	if parent := extractExecutionContext(ctx); parent != nil {
		*ec = *parent
	}

	return context.WithValue(ctx, executionContextKey, ec), ec
}

func extractExecutionContext(ctx context.Context) *executionContext {
	if ctx == nil {
		return nil
	}

	if value := ctx.Value(executionContextKey); value != nil {
		ec, ok := value.(*executionContext)
		if !ok {
			panic("invalid type stored in context for executionContextKey")
		}

		return ec
	}

	return nil
}

// WithNow fixes the instant used for timestamp columns.
func WithNow(ctx context.Context, now time.Time) context.Context {
	ctx, ec := withExecutionContext(ctx)
	ec.now = now

	return ctx
}

// currentInstant returns the injected instant or the wall clock. It is
// read once per Update or Insert call.
func currentInstant(ctx context.Context) time.Time {
	if ec := extractExecutionContext(ctx); ec != nil && !ec.now.IsZero() {
		return ec.now
	}

	return time.Now()
}
