package repository_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
	"github.com/secmon-lab/bqchat/pkg/repository/firestore"
	"github.com/secmon-lab/bqchat/pkg/repository/memory"
	"github.com/secmon-lab/bqchat/pkg/utils/clock"
	"github.com/secmon-lab/bqchat/pkg/utils/test"
)

func newFirestoreClient(t *testing.T) *firestore.Firestore {
	vars := test.NewEnvVars(t, "TEST_FIRESTORE_PROJECT_ID", "TEST_FIRESTORE_DATABASE_ID")
	client, err := firestore.New(t.Context(),
		vars.Get("TEST_FIRESTORE_PROJECT_ID"),
		vars.Get("TEST_FIRESTORE_DATABASE_ID"),
	)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testRepository(t *testing.T, repo interfaces.Repository) {
	base := time.Now().UTC().Truncate(time.Millisecond)
	ctx := clock.With(t.Context(), func() time.Time { return base })

	ssn := chat.NewSession(ctx, &chat.Profile{Name: "Explorer", Mode: chat.ModeCommand})

	t.Run("session round trip", func(t *testing.T) {
		gt.NoError(t, repo.PutSession(ctx, ssn)).Required()

		got, err := repo.GetSession(ctx, ssn.ID)
		gt.NoError(t, err).Required()
		gt.V(t, got).NotNil().Required()
		gt.V(t, got.ID).Equal(ssn.ID)
		gt.V(t, got.Mode).Equal(chat.ModeCommand)
		gt.V(t, got.Profile).Equal("Explorer")
		gt.True(t, got.CreatedAt.Equal(base))
	})

	t.Run("missing session is nil", func(t *testing.T) {
		got, err := repo.GetSession(ctx, types.NewSessionID())
		gt.NoError(t, err)
		gt.V(t, got).Nil()
	})

	t.Run("messages are ordered", func(t *testing.T) {
		for i, content := range []string{"describe sales", "**Details for `p.d.sales`:**", "thanks"} {
			at := base.Add(time.Duration(i) * time.Second)
			mctx := clock.With(ctx, func() time.Time { return at })
			role := chat.RoleUser
			if i%2 == 1 {
				role = chat.RoleAssistant
			}
			gt.NoError(t, repo.PutMessage(mctx, chat.NewMessage(mctx, ssn.ID, role, content))).Required()
		}

		messages, err := repo.GetMessages(ctx, ssn.ID)
		gt.NoError(t, err).Required()
		gt.A(t, messages).Length(3).Required()
		gt.V(t, messages[0].Content).Equal("describe sales")
		gt.V(t, messages[1].Role).Equal(chat.RoleAssistant)
		gt.V(t, messages[2].Content).Equal("thanks")
	})

	t.Run("messages of unknown session are empty", func(t *testing.T) {
		messages, err := repo.GetMessages(ctx, types.NewSessionID())
		gt.NoError(t, err)
		gt.A(t, messages).Length(0)
	})
}

func TestMemory(t *testing.T) {
	testRepository(t, memory.New())
}

func TestFirestore(t *testing.T) {
	testRepository(t, newFirestoreClient(t))
}

func TestMemoryIsolation(t *testing.T) {
	ctx := t.Context()
	repo := memory.New()
	ssn := chat.NewSession(ctx, &chat.Profile{Name: "Echo", Mode: chat.ModeEcho})
	gt.NoError(t, repo.PutSession(ctx, ssn))

	ssn.Mode = chat.ModeAgent
	got, err := repo.GetSession(ctx, ssn.ID)
	gt.NoError(t, err).Required()
	gt.V(t, got.Mode).Equal(chat.ModeEcho)

	gt.Error(t, repo.PutSession(ctx, &chat.Session{}))
	gt.Error(t, repo.PutMessage(ctx, &chat.Message{}))
}
