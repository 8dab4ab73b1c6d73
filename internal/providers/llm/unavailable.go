package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskdash/internal/core"
)

// Unavailable stands in for the chat model when no API key is configured.
type Unavailable struct {
	model string
}

func NewUnavailable(model string) *Unavailable {
	return &Unavailable{model: model}
}

func (u *Unavailable) Name() string {
	return u.model
}

func (u *Unavailable) Available() bool {
	return false
}

func (u *Unavailable) Generate(context.Context, core.PromptBundle) (string, error) {
	return "", fmt.Errorf("chat model: %w", core.ErrUnavailable)
}

func (u *Unavailable) Models(context.Context) ([]string, error) {
	return nil, fmt.Errorf("chat model: %w", core.ErrUnavailable)
}
