package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"
)

// Notifier pushes market alerts to a single Telegram chat.
type Notifier struct {
	sender *sender
}

func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	pref := tele.Settings{
		Token:   cfg.Token,
		URL:     cfg.APIURL,
		Offline: true,
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Notifier{
		sender: newSender(b, &tele.Chat{ID: cfg.ChatID}),
	}, nil
}

// NewAlertNotifier returns the Telegram notifier or Disabled when credentials are missing.
func NewAlertNotifier(ctx context.Context, cfg *config.TelegramConfig) core.Notifier {
	logger := log.FromCtx(ctx)
	if !cfg.Enabled() {
		logger.Warn().Msg("telegram token or chat id not set, alerts are logged only")
		return Disabled{}
	}

	n, err := NewNotifier(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("telegram notifier unavailable")
		return Disabled{}
	}

	logger.Info().Int64("chat_id", cfg.ChatID).Msg("telegram alerts enabled")
	return n
}

func (n *Notifier) Notify(ctx context.Context, alert core.Alert) error {
	return n.sender.sendMarkdown(ctx, FormatAlert(alert))
}

// FormatAlert renders an alert as Markdown.
func FormatAlert(a core.Alert) string {
	icon, verb := "📈", "up"
	if a.Direction == core.DirectionDown {
		icon, verb = "📉", "down"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s %s %s %s%%**\n\n", icon, a.Symbol, verb, a.ChangePercent)
	fmt.Fprintf(&sb, "Price: `%s`\n", decimal.NewFromFloat(a.Price).StringFixed(2))
	fmt.Fprintf(&sb, "Reference: `%s`\n", decimal.NewFromFloat(a.Reference).StringFixed(2))
	fmt.Fprintf(&sb, "Threshold: `%s%%`\n", decimal.NewFromFloat(a.Threshold).StringFixed(2))
	if !a.At.IsZero() {
		fmt.Fprintf(&sb, "Time: %s", a.At.Local().Format("15:04"))
	}
	return sb.String()
}

// Disabled drops alerts when Telegram is not configured.
type Disabled struct{}

func (Disabled) Notify(ctx context.Context, alert core.Alert) error {
	log.FromCtx(ctx).Warn().
		Str("symbol", alert.Symbol).
		Str("change", alert.ChangePercent).
		Msg("alert not delivered, telegram disabled")
	return fmt.Errorf("telegram: %w", core.ErrUnavailable)
}
