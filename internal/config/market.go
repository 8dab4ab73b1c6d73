package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskdash/pkg/log"
)

const (
	ReferenceOpen      = "open"
	ReferencePrevClose = "prev_close"
)

type MarketConfig struct {
	Symbol           string        `env:"TUSK_MARKET_SYMBOL" envDefault:"NQ=F"`
	Interval         string        `env:"TUSK_MARKET_INTERVAL" envDefault:"1m"`
	PollInterval     time.Duration `env:"TUSK_MARKET_POLL" envDefault:"1m"`
	Reference        string        `env:"TUSK_MARKET_REFERENCE" envDefault:"open"`
	AlertCooldown    time.Duration `env:"TUSK_ALERT_COOLDOWN" envDefault:"30m"`
	PriceRetention   time.Duration `env:"TUSK_PRICE_RETENTION" envDefault:"24h"`
	DefaultThreshold float64       `env:"TUSK_ALERT_THRESHOLD" envDefault:"1.0"`
	QuoteBaseURL     string        `env:"TUSK_QUOTE_BASE_URL" envDefault:"https://query1.finance.yahoo.com"`
}

func NewMarketConfig(ctx context.Context) *MarketConfig {
	c := &MarketConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Market config")
	}
	if c.Reference != ReferenceOpen && c.Reference != ReferencePrevClose {
		log.FromCtx(ctx).Fatal().Str("reference", c.Reference).Msg("unknown market reference policy")
	}
	if c.PollInterval <= 0 {
		log.FromCtx(ctx).Fatal().Dur("poll", c.PollInterval).Msg("market poll interval must be positive")
	}
	return c
}
