package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep collects one env value from a text field.
type InputStep struct {
	input    textinput.Model
	envKey   string
	title    string
	hint     string
	optional bool
	validate func(string) error
	err      error
}

func newInputStep(envKey, title, placeholder string, secret bool) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	return &InputStep{
		input:  ti,
		envKey: envKey,
		title:  title,
	}
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		value := strings.TrimSpace(s.input.Value())
		if value == "" && !s.optional {
			s.err = fmt.Errorf("%s is required", s.title)
			return s, nil
		}
		if value != "" && s.validate != nil {
			if err := s.validate(value); err != nil {
				s.err = err
				return s, nil
			}
		}
		state.EnvVars[s.envKey] = value
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Enter your %s:\n", s.title))
	if s.hint != "" {
		b.WriteString(hintStyle.Render(s.hint) + "\n")
	}
	b.WriteString("\n" + s.input.View() + "\n\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	if s.optional {
		b.WriteString("(press enter to confirm, leave empty to skip)\n")
	} else {
		b.WriteString("(press enter to confirm)\n")
	}
	return b.String()
}

func NewGeminiKeyStep() Step {
	s := newInputStep("TUSK_GEMINI_API_KEY", "Gemini API Key", "AIza...", true)
	s.hint = "Without a key the chat and document features stay offline."
	s.optional = true
	return s
}

func NewSymbolStep() Step {
	s := newInputStep("TUSK_MARKET_SYMBOL", "market symbol to watch", "NQ=F", false)
	s.optional = true
	s.validate = func(v string) error {
		if strings.ContainsAny(v, " /?#") {
			return fmt.Errorf("symbol %q contains invalid characters", v)
		}
		return nil
	}
	return s
}

func NewThresholdStep() Step {
	s := newInputStep("TUSK_ALERT_THRESHOLD", "alert threshold in percent", "1.0", false)
	s.optional = true
	s.validate = func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("threshold must be a positive number")
		}
		return nil
	}
	return s
}
