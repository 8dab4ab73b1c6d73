package llm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
	"google.golang.org/genai"
)

const actionGenerateContent = "generateContent"

// NewClient builds the Gemini API client shared by the chat model and the embedder.
func NewClient(ctx context.Context, cfg *config.GenAIConfig) (*genai.Client, error) {
	if !cfg.Enabled() {
		return nil, core.ErrUnavailable
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

type Gemini struct {
	client    *genai.Client
	model     string
	webSearch bool
}

func NewGemini(client *genai.Client, model string, webSearch bool) *Gemini {
	return &Gemini{
		client:    client,
		model:     model,
		webSearch: webSearch,
	}
}

func (g *Gemini) Name() string {
	return g.model
}

func (g *Gemini) Available() bool {
	return true
}

func (g *Gemini) Generate(ctx context.Context, bundle core.PromptBundle) (string, error) {
	model := bundle.Model
	if model == "" {
		model = g.model
	}

	contents := make([]*genai.Content, 0, len(bundle.History)+1)
	for _, turn := range bundle.History {
		contents = append(contents, genai.NewContentFromText(turn.Text, toGenAIRole(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(bundle.UserMessage, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{}
	if bundle.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(bundle.System, genai.RoleUser)
	}
	if g.webSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("model returned an empty response")
	}
	return text, nil
}

// Models lists the identifiers of models that support content generation.
func (g *Gemini) Models(ctx context.Context) ([]string, error) {
	var models []string
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if !slices.Contains(m.SupportedActions, actionGenerateContent) {
			continue
		}
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	slices.Sort(models)
	return models, nil
}

func toGenAIRole(role string) genai.Role {
	if role == core.PromptRoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}
