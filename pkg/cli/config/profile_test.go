package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/cli/config"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
)

func TestParseProfiles(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		input := `
profiles:
  - name: "Analyst"
    description: "Ask about your data"
    mode: agent
    system_prompt: "Answer in French."
    welcome: "Bonjour !"
  - name: "Explorer"
    mode: command
`
		profiles, err := config.ParseProfiles([]byte(input))
		gt.NoError(t, err).Required()
		gt.A(t, profiles).Length(2).Required()

		gt.V(t, profiles[0].Name).Equal("Analyst")
		gt.V(t, profiles[0].Mode).Equal(chat.ModeAgent)
		gt.V(t, profiles[0].SystemPrompt).Equal("Answer in French.")
		gt.V(t, profiles[0].Welcome).Equal("Bonjour !")
		gt.V(t, profiles[1].Mode).Equal(chat.ModeCommand)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := config.ParseProfiles([]byte("profiles:\n  - name: x\n    mode: psychic\n"))
		gt.Error(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := config.ParseProfiles([]byte("profiles:\n  - mode: echo\n"))
		gt.Error(t, err)
	})

	t.Run("duplicated name", func(t *testing.T) {
		_, err := config.ParseProfiles([]byte("profiles:\n  - name: a\n    mode: echo\n  - name: a\n    mode: list\n"))
		gt.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := config.ParseProfiles([]byte(""))
		gt.Error(t, err)
	})

	t.Run("broken yaml", func(t *testing.T) {
		_, err := config.ParseProfiles([]byte("profiles: [\n"))
		gt.Error(t, err)
	})
}

func TestProfile_Load(t *testing.T) {
	t.Run("built-in profiles without file", func(t *testing.T) {
		cfg := &config.Profile{}
		profiles, err := cfg.Load()
		gt.NoError(t, err).Required()
		gt.V(t, profiles[0].Name).Equal(chat.DefaultProfileName)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := config.NewProfile(filepath.Join(t.TempDir(), "none.yaml"))
		_, err := cfg.Load()
		gt.Error(t, err)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yaml")
		gt.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: Echo\n    mode: echo\n"), 0600)).Required()

		profiles, err := config.NewProfile(path).Load()
		gt.NoError(t, err).Required()
		gt.A(t, profiles).Length(1)
		gt.V(t, profiles[0].Name).Equal("Echo")
	})
}
