package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/tuskdash/internal/core"
	"google.golang.org/genai"
)

// GenAIEmbedder produces fixed-size vectors with the Gemini embedding API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

func NewGenAIEmbedder(client *genai.Client, model string, dims int) *GenAIEmbedder {
	return &GenAIEmbedder{
		client: client,
		model:  model,
		dims:   dims,
	}
}

func (e *GenAIEmbedder) Embed(ctx context.Context, text string, purpose core.EmbedPurpose) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	cfg := &genai.EmbedContentConfig{
		TaskType: string(purpose),
	}
	if e.dims > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(e.dims))
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	values := result.Embeddings[0].Values
	if e.dims > 0 && len(values) != e.dims {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(values), e.dims)
	}
	return values, nil
}

func (e *GenAIEmbedder) Dims() int {
	return e.dims
}

// Unavailable is the embedder used when no API key is configured.
type Unavailable struct {
	dims int
}

func NewUnavailable(dims int) *Unavailable {
	return &Unavailable{dims: dims}
}

func (u *Unavailable) Embed(context.Context, string, core.EmbedPurpose) ([]float32, error) {
	return nil, fmt.Errorf("embedder: %w", core.ErrUnavailable)
}

func (u *Unavailable) Dims() int {
	return u.dims
}
