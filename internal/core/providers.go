package core

import "context"

type ChatModel interface {
	Generate(ctx context.Context, bundle PromptBundle) (string, error)
	Models(ctx context.Context) ([]string, error)
	Name() string
	Available() bool
}

type Embedder interface {
	Embed(ctx context.Context, text string, purpose EmbedPurpose) ([]float32, error)
	Dims() int
}

type QuoteProvider interface {
	Series(ctx context.Context, symbol, interval, rng string) (Series, error)
}

type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}
