package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/cli/config"
)

func TestLLMCfg_NotConfigured(t *testing.T) {
	cfg := &config.LLMCfg{}
	gt.V(t, cfg.Provider()).Equal(config.ProviderNone)

	client, err := cfg.Configure(t.Context())
	gt.NoError(t, err)
	gt.True(t, client == nil)
}

func TestLLMCfg_Provider(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      *config.LLMCfg
		expected string
	}{
		{"auto prefers claude", config.NewLLMCfg(config.ProviderAuto, "p1", "p2"), config.ProviderClaude},
		{"auto falls back to gemini", config.NewLLMCfg(config.ProviderAuto, "", "p2"), config.ProviderGemini},
		{"empty means auto", config.NewLLMCfg("", "", "p2"), config.ProviderGemini},
		{"explicit gemini", config.NewLLMCfg(config.ProviderGemini, "p1", "p2"), config.ProviderGemini},
		{"explicit none", config.NewLLMCfg(config.ProviderNone, "p1", "p2"), config.ProviderNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.V(t, tc.cfg.Provider()).Equal(tc.expected)
		})
	}
}

func TestLLMCfg_ConfigureErrors(t *testing.T) {
	t.Run("claude without project", func(t *testing.T) {
		_, err := config.NewLLMCfg(config.ProviderClaude, "", "").Configure(t.Context())
		gt.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := config.NewLLMCfg("openai", "", "").Configure(t.Context())
		gt.Error(t, err)
	})

	t.Run("none ignores projects", func(t *testing.T) {
		client, err := config.NewLLMCfg(config.ProviderNone, "p1", "").Configure(t.Context())
		gt.NoError(t, err)
		gt.True(t, client == nil)
	})
}
