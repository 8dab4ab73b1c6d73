package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("TUSK_RUNTIME_PATH", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		cfg := NewAppConfig(ctx)
		assert.Equal(t, filepath.Join(home, ".tuskdash"), cfg.GetRuntimePath())
		assert.Equal(t, filepath.Join(home, ".tuskdash", "tuskdash.db"), cfg.GetDatabasePath())
		assert.Equal(t, ":8000", cfg.HTTPAddr)
		assert.Equal(t, 10, cfg.ContextWindow)
		assert.Equal(t, 3, cfg.MemoryK)
		assert.Equal(t, 3, cfg.KnowledgeK)
		assert.Zero(t, cfg.TurnRetention)
		assert.Equal(t, time.Hour, cfg.RetentionInterval)
	})

	t.Run("absolute runtime path", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("TUSK_RUNTIME_PATH", dir)
		t.Setenv("TUSK_MEMORY_K", "5")
		t.Setenv("TUSK_TURN_RETENTION", "720h")

		cfg := NewAppConfig(ctx)
		assert.Equal(t, dir, cfg.GetRuntimePath())
		assert.Equal(t, filepath.Join(dir, ".env"), cfg.GetEnvPath())
		assert.Equal(t, 5, cfg.MemoryK)
		assert.Equal(t, 720*time.Hour, cfg.TurnRetention)
	})
}

func TestGenAIConfig(t *testing.T) {
	t.Setenv("TUSK_GEMINI_API_KEY", "")
	cfg := NewGenAIConfig(context.Background())
	assert.False(t, cfg.Enabled())
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 768, cfg.EmbeddingDims)

	t.Setenv("TUSK_GEMINI_API_KEY", "key")
	assert.True(t, NewGenAIConfig(context.Background()).Enabled())
}

func TestTelegramConfig_Enabled(t *testing.T) {
	tests := []struct {
		name  string
		cfg   TelegramConfig
		enabled bool
	}{
		{name: "empty", cfg: TelegramConfig{}},
		{name: "token only", cfg: TelegramConfig{Token: "123:abc"}},
		{name: "chat only", cfg: TelegramConfig{ChatID: 42}},
		{name: "both", cfg: TelegramConfig{Token: "123:abc", ChatID: 42}, enabled: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enabled, tt.cfg.Enabled())
		})
	}
}

func TestNewMarketConfig(t *testing.T) {
	t.Setenv("TUSK_MARKET_SYMBOL", "ES=F")
	t.Setenv("TUSK_MARKET_REFERENCE", ReferencePrevClose)

	cfg := NewMarketConfig(context.Background())
	assert.Equal(t, "ES=F", cfg.Symbol)
	assert.Equal(t, ReferencePrevClose, cfg.Reference)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 30*time.Minute, cfg.AlertCooldown)
	assert.Equal(t, 1.0, cfg.DefaultThreshold)
}

func TestIsDebug(t *testing.T) {
	t.Setenv("TUSK_DEBUG", "1")
	assert.True(t, IsDebug())
	t.Setenv("TUSK_DEBUG", "0")
	assert.False(t, IsDebug())
}
