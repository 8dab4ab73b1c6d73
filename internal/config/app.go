package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskdash/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"TUSK_RUNTIME_PATH" envDefault:".tuskdash"`
	HTTPAddr    string `env:"TUSK_HTTP_ADDR" envDefault:":8000"`

	// Context assembly
	ContextWindow int `env:"TUSK_CONTEXT_WINDOW" envDefault:"10"`
	MemoryK       int `env:"TUSK_MEMORY_K" envDefault:"3"`
	KnowledgeK    int `env:"TUSK_KNOWLEDGE_K" envDefault:"3"`
	HistoryLimit  int `env:"TUSK_HISTORY_LIMIT" envDefault:"50"`

	// Retention, zero keeps rows forever
	TurnRetention     time.Duration `env:"TUSK_TURN_RETENTION" envDefault:"0s"`
	FragmentRetention time.Duration `env:"TUSK_FRAGMENT_RETENTION" envDefault:"0s"`
	RetentionInterval time.Duration `env:"TUSK_RETENTION_INTERVAL" envDefault:"1h"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	if !filepath.IsAbs(c.RuntimePath) {
		c.RuntimePath = GetRuntimePath()
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "tuskdash.db")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
