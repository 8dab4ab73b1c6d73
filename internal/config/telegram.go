package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskdash/pkg/log"
)

type TelegramConfig struct {
	Token  string `env:"TUSK_TELEGRAM_TOKEN"`
	ChatID int64  `env:"TUSK_TELEGRAM_CHAT_ID"`
	APIURL string `env:"TUSK_TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != 0
}
