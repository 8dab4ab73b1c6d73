package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/tuskdash/internal/config"
)

// ChoiceStep selects one of a fixed set of values for an env key.
type ChoiceStep struct {
	envKey  string
	title   string
	choices []item
	cursor  int
}

func NewReferenceStep() Step {
	return &ChoiceStep{
		envKey: "TUSK_MARKET_REFERENCE",
		title:  "Select the reference price for alerts:",
		choices: []item{
			{id: config.ReferenceOpen, title: "Session open", desc: "first candle of the current range"},
			{id: config.ReferencePrevClose, title: "Previous close", desc: "close of the prior session"},
		},
	}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars[s.envKey] = s.choices[s.cursor].id
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, choice := range s.choices {
		line := fmt.Sprintf("%s %s", " ", choice.title)
		if s.cursor == i {
			line = fmt.Sprintf("%s %s", "❯", choice.title)
			b.WriteString(selStyle.Render(line) + " " + hintStyle.Render(choice.desc) + "\n")
			continue
		}
		b.WriteString(itemStyle.Render(line) + "\n")
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
