package msg_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

func TestNotify(t *testing.T) {
	var got string
	ctx := msg.With(t.Context(), func(ctx context.Context, m string) {
		got = m
	}, nil)

	msg.Notify(ctx, "hello %s", "world")
	gt.V(t, got).Equal("hello world")

	// trace func is nil; must not panic
	msg.Trace(ctx, "ignored")
}

func TestWithoutSink(t *testing.T) {
	msg.Notify(t.Context(), "nobody listens")
	msg.Trace(t.Context(), "nobody listens")
}

func TestCollector(t *testing.T) {
	var c msg.Collector
	ctx := c.With(t.Context())

	msg.Trace(ctx, "running %d", 1)
	msg.Notify(ctx, "first")
	msg.Notify(ctx, "second")

	gt.A(t, c.Messages()).Length(2)
	gt.V(t, c.Messages()[1]).Equal("second")
	gt.A(t, c.Traces()).Length(1)
	gt.V(t, c.Traces()[0]).Equal("running 1")
}
