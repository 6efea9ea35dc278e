package errs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/utils/request_id"
)

type testTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (x *testTransport) Configure(options sentry.ClientOptions) {}
func (x *testTransport) SendEvent(event *sentry.Event) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.events = append(x.events, event)
}
func (x *testTransport) Flush(timeout time.Duration) bool          { return true }
func (x *testTransport) FlushWithContext(ctx context.Context) bool { return true }
func (x *testTransport) Close()                                    {}

func TestHandle(t *testing.T) {
	transport := &testTransport{}
	gt.NoError(t, sentry.Init(sentry.ClientOptions{
		Dsn:       "https://test@test.ingest.sentry.io/test",
		Transport: transport,
	}))
	defer sentry.Flush(0)

	ctx := request_id.With(t.Context(), "req-1")
	errs.Handle(ctx, goerr.New("boom", goerr.V("table", "p.d.t")))
	sentry.Flush(0)

	gt.A(t, transport.events).Length(1).Required()
	gt.V(t, transport.events[0].Tags["request_id"]).Equal("req-1")
	gt.V(t, transport.events[0].Extra["table"]).Equal("p.d.t")

	// nil is ignored
	errs.Handle(ctx, nil)
	gt.A(t, transport.events).Length(1)
}
