package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
)

const DefaultEmbedTimeout = 15 * time.Second

// Embedder bounds every call to the backing embedding model with a timeout.
type Embedder struct {
	backend core.Embedder
	timeout time.Duration
}

func NewEmbedder(backend core.Embedder, timeout time.Duration) *Embedder {
	if timeout <= 0 {
		timeout = DefaultEmbedTimeout
	}
	return &Embedder{backend: backend, timeout: timeout}
}

func (e *Embedder) Embed(ctx context.Context, text string, purpose core.EmbedPurpose) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	log.FromCtx(ctx).Debug().
		Str("purpose", string(purpose)).
		Int("chars", len(text)).
		Msg("embedding text")

	vec, err := e.backend.Embed(ctx, text, purpose)
	if err != nil {
		if purpose == core.PurposeDocument {
			return nil, fmt.Errorf("failed to encode passage: %w", err)
		}
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	return vec, nil
}

func (e *Embedder) Dims() int {
	return e.backend.Dims()
}
