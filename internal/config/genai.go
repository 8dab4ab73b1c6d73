package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskdash/pkg/log"
)

// GenAIConfig configures the Gemini chat and embedding clients.
// An empty APIKey disables both without failing startup.
type GenAIConfig struct {
	APIKey         string `env:"TUSK_GEMINI_API_KEY"`
	Model          string `env:"TUSK_GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	EmbeddingModel string `env:"TUSK_EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	EmbeddingDims  int    `env:"TUSK_EMBEDDING_DIMS" envDefault:"768"`
	WebSearch      bool   `env:"TUSK_WEB_SEARCH" envDefault:"false"`
	BaseURL        string `env:"TUSK_GEMINI_BASE_URL"`
}

func NewGenAIConfig(ctx context.Context) *GenAIConfig {
	c := &GenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse GenAI config")
	}
	return c
}

func (c GenAIConfig) Enabled() bool {
	return c.APIKey != ""
}
