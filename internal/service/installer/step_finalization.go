package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep fills defaults for values the user skipped
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	Finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

// Finalize applies defaults and drops values that are useless on their own.
func Finalize(state *InstallState) {
	if state.EnvVars["TUSK_TELEGRAM_TOKEN"] == "" {
		delete(state.EnvVars, "TUSK_TELEGRAM_CHAT_ID")
	}
	if state.EnvVars["TUSK_GEMINI_MODEL"] == "" {
		state.EnvVars["TUSK_GEMINI_MODEL"] = defaultModel
	}
	if state.EnvVars["TUSK_MARKET_REFERENCE"] == "" {
		state.EnvVars["TUSK_MARKET_REFERENCE"] = "open"
	}
	if state.EnvVars["TUSK_DEBUG"] == "" {
		state.EnvVars["TUSK_DEBUG"] = "0"
	}
}
