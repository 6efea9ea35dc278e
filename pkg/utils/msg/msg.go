package msg

import (
	"context"
	"fmt"
	"sync"

	"github.com/secmon-lab/bqchat/pkg/utils/logging"
)

// NotifyFunc receives a complete assistant message for the user.
type NotifyFunc func(ctx context.Context, msg string)

// TraceFunc receives progress messages (tool calls, query start, etc).
type TraceFunc func(ctx context.Context, msg string)

type ctxNotifyFuncKey struct{}
type ctxTraceFuncKey struct{}

func With(ctx context.Context, notify NotifyFunc, trace TraceFunc) context.Context {
	ctx = context.WithValue(ctx, ctxNotifyFuncKey{}, notify)
	ctx = context.WithValue(ctx, ctxTraceFuncKey{}, trace)
	return ctx
}

func Notify(ctx context.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if fn, ok := ctx.Value(ctxNotifyFuncKey{}).(NotifyFunc); ok && fn != nil {
		fn(ctx, message)
		return
	}
	logging.From(ctx).Debug("notify func is not set", "message", message)
}

func Trace(ctx context.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if fn, ok := ctx.Value(ctxTraceFuncKey{}).(TraceFunc); ok && fn != nil {
		fn(ctx, message)
		return
	}
	logging.From(ctx).Debug("trace func is not set", "message", message)
}

// Collector buffers notified and traced messages. It is used by request/response
// transports that reply once per turn.
type Collector struct {
	mu       sync.Mutex
	messages []string
	traces   []string
}

func (x *Collector) With(ctx context.Context) context.Context {
	return With(ctx,
		func(ctx context.Context, msg string) {
			x.mu.Lock()
			defer x.mu.Unlock()
			x.messages = append(x.messages, msg)
		},
		func(ctx context.Context, msg string) {
			x.mu.Lock()
			defer x.mu.Unlock()
			x.traces = append(x.traces, msg)
		},
	)
}

func (x *Collector) Messages() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string{}, x.messages...)
}

func (x *Collector) Traces() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string{}, x.traces...)
}
