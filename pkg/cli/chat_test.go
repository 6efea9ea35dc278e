package cli_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/cli"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/usecase"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

func TestOverrideMode(t *testing.T) {
	profiles := chat.DefaultProfiles()

	t.Run("first profile when name is empty", func(t *testing.T) {
		got, err := cli.OverrideMode(profiles, "", chat.ModeEcho)
		gt.NoError(t, err).Required()
		gt.A(t, got).Length(1)
		gt.V(t, got[0].Name).Equal(chat.DefaultProfileName)
		gt.V(t, got[0].Mode).Equal(chat.ModeEcho)
		// original profiles are untouched
		gt.V(t, profiles[0].Mode).Equal(chat.ModeAgent)
	})

	t.Run("named profile", func(t *testing.T) {
		got, err := cli.OverrideMode(profiles, "Catalog", chat.ModeCommand)
		gt.NoError(t, err).Required()
		gt.V(t, got[0].Name).Equal("Catalog")
		gt.V(t, got[0].Mode).Equal(chat.ModeCommand)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := cli.OverrideMode(profiles, "nobody", chat.ModeEcho)
		gt.True(t, errors.Is(err, errs.ErrProfileNotFound))
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := cli.OverrideMode(profiles, "", chat.Mode("telepathy"))
		gt.Error(t, err)
	})
}

func TestRunInteractive(t *testing.T) {
	uc := usecase.New(usecase.WithProfiles([]*chat.Profile{
		{Name: "Echo", Mode: chat.ModeEcho, Welcome: "hello there"},
	}))

	var out bytes.Buffer
	ctx := msg.With(t.Context(), cli.PrintNotify(&out), nil)

	ssn, err := uc.NewSession(ctx, "")
	gt.NoError(t, err).Required()

	in := strings.NewReader("ping\n\nquit\nnot read\n")
	gt.NoError(t, cli.RunInteractive(ctx, uc, ssn, in, &out))

	s := out.String()
	gt.S(t, s).Contains("hello there")
	gt.S(t, s).Contains("You said: ping")
	gt.S(t, s).Contains("Session ended")
	gt.S(t, s).NotContains("not read")

	messages, err := uc.Messages(ctx, ssn.ID)
	gt.NoError(t, err).Required()
	// welcome, user and reply
	gt.A(t, messages).Length(3)
}
