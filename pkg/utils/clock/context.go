package clock

import (
	"context"
	"time"
)

type ctxClockKey struct{}

// Clock returns the current time. Tests replace it through With.
type Clock func() time.Time

func Now(ctx context.Context) time.Time {
	if c, ok := ctx.Value(ctxClockKey{}).(Clock); ok && c != nil {
		return c()
	}
	return time.Now()
}

func With(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, ctxClockKey{}, c)
}
