package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/cli/config"
)

func TestFirestore_IsConfigured(t *testing.T) {
	t.Run("returns false when project ID is empty", func(t *testing.T) {
		cfg := &config.Firestore{}
		gt.False(t, cfg.IsConfigured())
	})
}

func TestFirestore_Configure(t *testing.T) {
	t.Run("returns error when project ID is empty", func(t *testing.T) {
		cfg := &config.Firestore{}
		_, err := cfg.Configure(t.Context())
		gt.Error(t, err)
	})
}
