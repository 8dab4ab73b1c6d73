package llm

import (
	"context"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
	"google.golang.org/genai"
)

// NewChatModel returns the Gemini model, or the unavailable stub when client is nil.
func NewChatModel(ctx context.Context, cfg *config.GenAIConfig, client *genai.Client) core.ChatModel {
	if client == nil {
		log.FromCtx(ctx).Warn().Msg("gemini api key not set, chat is offline")
		return NewUnavailable(cfg.Model)
	}

	log.FromCtx(ctx).Info().
		Str("provider", "gemini").
		Str("model", cfg.Model).
		Bool("web_search", cfg.WebSearch).
		Msg("starting llm provider")

	return NewGemini(client, cfg.Model, cfg.WebSearch)
}
