package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

const (
	ProviderAuto   = "auto"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

type LLMCfg struct {
	provider string

	// Claude configuration
	claudeModel     string
	claudeProjectID string
	claudeLocation  string

	// Gemini configuration
	geminiModel     string
	geminiProjectID string
	geminiLocation  string
}

func (x *LLMCfg) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider [auto|claude|gemini|none]. auto prefers Claude when configured",
			Sources:     cli.EnvVars("BQCHAT_LLM_PROVIDER"),
			Value:       ProviderAuto,
			Destination: &x.provider,
			Category:    "LLM",
		},
		// Claude flags
		&cli.StringFlag{
			Name:        "claude-model",
			Usage:       "Claude model name",
			Sources:     cli.EnvVars("BQCHAT_CLAUDE_MODEL"),
			Value:       "claude-sonnet-4@20250514",
			Destination: &x.claudeModel,
			Category:    "Claude",
		},
		&cli.StringFlag{
			Name:        "claude-project-id",
			Usage:       "Google Cloud Project ID for Claude Vertex AI",
			Sources:     cli.EnvVars("BQCHAT_CLAUDE_PROJECT_ID"),
			Destination: &x.claudeProjectID,
			Category:    "Claude",
		},
		&cli.StringFlag{
			Name:        "claude-location",
			Usage:       "Google Cloud location for Claude Vertex AI",
			Sources:     cli.EnvVars("BQCHAT_CLAUDE_LOCATION"),
			Value:       "us-east5",
			Destination: &x.claudeLocation,
			Category:    "Claude",
		},
		// Gemini flags
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model",
			Destination: &x.geminiModel,
			Category:    "Gemini",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("BQCHAT_GEMINI_MODEL"),
		},
		&cli.StringFlag{
			Name:        "gemini-project-id",
			Usage:       "GCP Project ID for Vertex AI",
			Destination: &x.geminiProjectID,
			Category:    "Gemini",
			Sources:     cli.EnvVars("BQCHAT_GEMINI_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "GCP Location for Vertex AI",
			Value:       "us-central1",
			Destination: &x.geminiLocation,
			Category:    "Gemini",
			Sources:     cli.EnvVars("BQCHAT_GEMINI_LOCATION"),
		},
	}
}

func (x LLMCfg) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("provider", x.Provider()),
	}

	if x.claudeProjectID != "" {
		attrs = append(attrs,
			slog.String("claude_model", x.claudeModel),
			slog.String("claude_project_id", x.claudeProjectID),
			slog.String("claude_location", x.claudeLocation),
		)
	}
	if x.geminiProjectID != "" {
		attrs = append(attrs,
			slog.String("gemini_model", x.geminiModel),
			slog.String("gemini_project_id", x.geminiProjectID),
			slog.String("gemini_location", x.geminiLocation),
		)
	}

	return slog.GroupValue(attrs...)
}

// Configure creates the client of the selected provider. It returns nil
// without error when no provider is available; chat profiles that need an
// LLM are then rejected.
func (x *LLMCfg) Configure(ctx context.Context) (gollem.LLMClient, error) {
	switch x.Provider() {
	case ProviderClaude:
		if x.claudeProjectID == "" {
			return nil, goerr.New("--claude-project-id is required for claude provider")
		}
		return x.configureClaude(ctx)
	case ProviderGemini:
		if x.geminiProjectID == "" {
			return nil, goerr.New("--gemini-project-id is required for gemini provider")
		}
		return x.configureGemini(ctx)
	case ProviderNone:
		return nil, nil
	default:
		return nil, goerr.New("unknown LLM provider", goerr.V("provider", x.provider))
	}
}

func (x *LLMCfg) configureClaude(ctx context.Context) (gollem.LLMClient, error) {
	client, err := claude.NewWithVertex(ctx, x.claudeLocation, x.claudeProjectID,
		claude.WithVertexModel(x.claudeModel),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Claude Vertex AI client",
			goerr.V("projectID", x.claudeProjectID),
			goerr.V("location", x.claudeLocation),
			goerr.V("model", x.claudeModel))
	}

	return client, nil
}

func (x *LLMCfg) configureGemini(ctx context.Context) (gollem.LLMClient, error) {
	client, err := gemini.New(ctx, x.geminiProjectID, x.geminiLocation,
		gemini.WithModel(x.geminiModel),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client",
			goerr.V("projectID", x.geminiProjectID),
			goerr.V("location", x.geminiLocation),
			goerr.V("model", x.geminiModel))
	}

	return client, nil
}

// Provider resolves "auto" (or empty) by the configured project IDs.
func (x *LLMCfg) Provider() string {
	if x.provider != "" && x.provider != ProviderAuto {
		return x.provider
	}

	switch {
	case x.claudeProjectID != "":
		return ProviderClaude
	case x.geminiProjectID != "":
		return ProviderGemini
	default:
		return ProviderNone
	}
}
