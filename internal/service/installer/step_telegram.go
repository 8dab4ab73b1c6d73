package installer

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// NewTelegramTokenStep collects the bot token used for price alerts.
func NewTelegramTokenStep() Step {
	s := newInputStep("TUSK_TELEGRAM_TOKEN", "Telegram Bot Token", "123456789:ABCDEF...", true)
	s.hint = "Price alerts are only logged when no bot is configured."
	s.optional = true
	return s
}

// TelegramChatStep collects the chat that receives alerts. It is skipped when
// no token was entered.
type TelegramChatStep struct {
	*InputStep
}

func NewTelegramChatStep() Step {
	s := newInputStep("TUSK_TELEGRAM_CHAT_ID", "Telegram Chat ID", "123456789", false)
	s.validate = func(v string) error {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("chat id must be a number")
		}
		return nil
	}
	return &TelegramChatStep{InputStep: s}
}

func (s *TelegramChatStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if state.EnvVars["TUSK_TELEGRAM_TOKEN"] == "" {
		return nil, nil
	}
	next, cmd := s.InputStep.Update(msg, state, width, height)
	if next == nil {
		return nil, cmd
	}
	return s, cmd
}
