package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
	bqsvc "github.com/secmon-lab/bqchat/pkg/service/bigquery"
	bqtool "github.com/secmon-lab/bqchat/pkg/tool/bigquery"
	"github.com/secmon-lab/bqchat/pkg/utils/clock"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

// runtime is the in-process state of one chat session. Turns of a session
// are serialized by mu. lastUsed is guarded by UseCases.mu.
type runtime struct {
	mu      sync.Mutex
	profile *chat.Profile
	service *bqsvc.Service
	tool    *bqtool.Tool
	history *gollem.History
	closed  bool

	lastUsed time.Time
}

func (x *UseCases) newRuntime(ctx context.Context, profile *chat.Profile) *runtime {
	rt := &runtime{profile: profile, lastUsed: clock.Now(ctx)}
	if profile.Mode.NeedsBigQuery() {
		rt.service = x.newService(ctx)
		rt.tool = bqtool.New(rt.service, bqtool.WithQueryTimeout(x.queryTimeout))
	}
	return rt
}

// close must be called with rt.mu held.
func (rt *runtime) close(ctx context.Context, id types.SessionID) {
	rt.closed = true
	if rt.service == nil {
		return
	}
	if err := rt.service.Close(); err != nil {
		logging.From(ctx).Warn("failed to close BigQuery client", "session_id", id, logging.ErrAttr(err))
	}
}

func (x *UseCases) checkProfile(profile *chat.Profile) error {
	if profile.Mode.NeedsLLM() && x.llmClient == nil {
		return goerr.Wrap(errs.ErrLLMNotConfigured, "chat profile requires an LLM",
			goerr.TV(errs.ProfileKey, profile.Name),
			goerr.V("mode", profile.Mode.String()),
			goerr.T(errs.TagValidation))
	}
	return nil
}

func (x *UseCases) NewSession(ctx context.Context, profileName string) (*chat.Session, error) {
	profile, err := x.lookupProfile(profileName)
	if err != nil {
		return nil, err
	}
	if err := x.checkProfile(profile); err != nil {
		return nil, err
	}

	ssn := chat.NewSession(ctx, profile)
	if err := x.repository.PutSession(ctx, ssn); err != nil {
		return nil, goerr.Wrap(err, "failed to save chat session", goerr.TV(errs.SessionIDKey, ssn.ID.String()))
	}

	rt := x.newRuntime(ctx, profile)
	x.mu.Lock()
	x.sessions[ssn.ID] = rt
	x.mu.Unlock()

	logging.From(ctx).Info("chat session started",
		"session_id", ssn.ID,
		"profile", profile.Name,
		"mode", profile.Mode)

	return ssn, nil
}

// Session returns the stored session without building its runtime.
func (x *UseCases) Session(ctx context.Context, id types.SessionID) (*chat.Session, error) {
	ssn, err := x.repository.GetSession(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get chat session", goerr.TV(errs.SessionIDKey, id.String()))
	}
	if ssn == nil {
		return nil, goerr.Wrap(errs.ErrSessionNotFound, "chat session not found",
			goerr.TV(errs.SessionIDKey, id.String()),
			goerr.T(errs.TagNotFound))
	}
	return ssn, nil
}

// RestoreSession loads a stored session and rebuilds its runtime when the
// process does not hold it anymore.
func (x *UseCases) RestoreSession(ctx context.Context, id types.SessionID) (*chat.Session, error) {
	ssn, err := x.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := x.runtimeOf(ctx, ssn); err != nil {
		return nil, err
	}
	return ssn, nil
}

// runtimeOf returns the live runtime of the session. A missing runtime is
// built without holding x.mu; when another caller wins the race, the
// duplicate is closed.
func (x *UseCases) runtimeOf(ctx context.Context, ssn *chat.Session) (*runtime, error) {
	x.mu.Lock()
	if rt, ok := x.sessions[ssn.ID]; ok {
		rt.lastUsed = clock.Now(ctx)
		x.mu.Unlock()
		return rt, nil
	}
	x.mu.Unlock()

	rt, err := x.buildRuntime(ctx, ssn)
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	if current, ok := x.sessions[ssn.ID]; ok {
		current.lastUsed = clock.Now(ctx)
		x.mu.Unlock()

		rt.mu.Lock()
		rt.close(ctx, ssn.ID)
		rt.mu.Unlock()
		return current, nil
	}
	x.sessions[ssn.ID] = rt
	x.mu.Unlock()

	return rt, nil
}

func (x *UseCases) buildRuntime(ctx context.Context, ssn *chat.Session) (*runtime, error) {
	profile, err := x.lookupProfile(ssn.Profile)
	if err != nil {
		return nil, err
	}
	// The stored mode wins over a profile edited since the session started.
	if profile.Mode != ssn.Mode {
		p := *profile
		p.Mode = ssn.Mode
		profile = &p
	}
	if err := x.checkProfile(profile); err != nil {
		return nil, err
	}

	rt := x.newRuntime(ctx, profile)
	if profile.Mode.NeedsLLM() && x.historyStorage != nil {
		history, err := x.historyStorage.GetHistory(ctx, ssn.ID)
		switch {
		case err != nil:
			logging.From(ctx).Warn("failed to load chat history, starting fresh",
				"session_id", ssn.ID, logging.ErrAttr(err))
		case history != nil && history.ToCount() == 0:
			logging.From(ctx).Debug("stored chat history is empty", "session_id", ssn.ID)
		default:
			rt.history = history
		}
	}
	return rt, nil
}

// acquire returns the session runtime locked for one turn. A runtime closed
// while the caller was waiting is replaced by a fresh one.
func (x *UseCases) acquire(ctx context.Context, ssn *chat.Session) (*runtime, error) {
	for {
		rt, err := x.runtimeOf(ctx, ssn)
		if err != nil {
			return nil, err
		}
		rt.mu.Lock()
		if !rt.closed {
			return rt, nil
		}
		rt.mu.Unlock()
	}
}

func (x *UseCases) touch(ctx context.Context, rt *runtime) {
	x.mu.Lock()
	rt.lastUsed = clock.Now(ctx)
	x.mu.Unlock()
}

// CloseSession releases the BigQuery client of the session. The session
// record and its messages stay in the repository. It waits for a running
// turn of the session to finish.
func (x *UseCases) CloseSession(ctx context.Context, ssn *chat.Session) {
	x.mu.Lock()
	rt, ok := x.sessions[ssn.ID]
	delete(x.sessions, ssn.ID)
	x.mu.Unlock()

	if !ok {
		return
	}
	rt.mu.Lock()
	rt.close(ctx, ssn.ID)
	rt.mu.Unlock()
	logging.From(ctx).Debug("chat session closed", "session_id", ssn.ID)
}

// ActiveSessions returns the number of sessions holding a runtime.
func (x *UseCases) ActiveSessions() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.sessions)
}

// SweepIdleSessions closes runtimes unused for the idle timeout and returns
// how many were closed. Sessions in the middle of a turn are skipped. An
// evicted session is rebuilt on its next turn.
func (x *UseCases) SweepIdleSessions(ctx context.Context) int {
	if x.idleTimeout <= 0 {
		return 0
	}
	now := clock.Now(ctx)

	type idle struct {
		id types.SessionID
		rt *runtime
	}
	var targets []idle

	x.mu.Lock()
	for id, rt := range x.sessions {
		if now.Sub(rt.lastUsed) < x.idleTimeout {
			continue
		}
		if !rt.mu.TryLock() {
			continue
		}
		delete(x.sessions, id)
		targets = append(targets, idle{id: id, rt: rt})
	}
	x.mu.Unlock()

	for _, t := range targets {
		t.rt.close(ctx, t.id)
		t.rt.mu.Unlock()
	}
	if len(targets) > 0 {
		logging.From(ctx).Info("idle chat sessions closed", "count", len(targets))
	}
	return len(targets)
}

// RunSessionSweeper calls SweepIdleSessions every interval until ctx is done.
func (x *UseCases) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	if x.idleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			x.SweepIdleSessions(ctx)
		}
	}
}

func (x *UseCases) Welcome(ctx context.Context, ssn *chat.Session) {
	welcome := chat.WelcomeMessage
	if profile, err := x.lookupProfile(ssn.Profile); err == nil && profile.Welcome != "" {
		welcome = profile.Welcome
	}

	msg.Notify(ctx, "%s", welcome)
	x.record(ctx, ssn, chat.RoleAssistant, welcome)
}

func (x *UseCases) Messages(ctx context.Context, id types.SessionID) ([]*chat.Message, error) {
	messages, err := x.repository.GetMessages(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get chat messages", goerr.TV(errs.SessionIDKey, id.String()))
	}
	return messages, nil
}

func (x *UseCases) record(ctx context.Context, ssn *chat.Session, role chat.Role, content string) {
	m := chat.NewMessage(ctx, ssn.ID, role, content)
	if err := x.repository.PutMessage(ctx, m); err != nil {
		errs.Handle(ctx, goerr.Wrap(err, "failed to save chat message",
			goerr.TV(errs.SessionIDKey, ssn.ID.String()),
			goerr.V("role", string(role))))
	}
}
