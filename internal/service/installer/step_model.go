package installer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/providers/llm"
)

const defaultModel = "gemini-2.5-flash"

// ModelLister fetches the selectable chat models for an API key.
type ModelLister func(ctx context.Context, apiKey string) ([]string, error)

// ModelStep allows selection of the Gemini chat model. Without an API key the
// default model is kept and the step is skipped.
type ModelStep struct {
	list     list.Model
	lister   ModelLister
	loading  bool
	fetching bool
	err      error
}

func NewModelStep() Step {
	return newModelStep(listGeminiModels)
}

func newModelStep(lister ModelLister) *ModelStep {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select Gemini Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{
		list:    l,
		lister:  lister,
		loading: true,
	}
}

func listGeminiModels(ctx context.Context, apiKey string) ([]string, error) {
	cfg := &config.GenAIConfig{APIKey: apiKey, Model: defaultModel}
	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return llm.NewGemini(client, cfg.Model, false).Models(ctx)
}

func (s *ModelStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	apiKey := state.EnvVars["TUSK_GEMINI_API_KEY"]
	if apiKey == "" {
		state.EnvVars["TUSK_GEMINI_MODEL"] = defaultModel
		return nil, nil
	}

	if s.loading && !s.fetching {
		s.fetching = true
		return s, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			models, err := s.lister(ctx, apiKey)
			if err != nil {
				return errMsg(err)
			}

			items := make([]list.Item, 0, len(models))
			for _, name := range models {
				items = append(items, item{
					id:    name,
					title: name,
					desc:  "supports generateContent",
				})
			}
			return modelsMsg(items)
		}
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case modelsMsg:
		s.list.SetItems(msg)
		s.loading = false
		s.fetching = false
		return s, nil

	case errMsg:
		s.loading = false
		s.fetching = false
		s.err = msg
		return s, nil

	case tea.KeyMsg:
		if s.err != nil {
			switch msg.String() {
			case "enter":
				s.err = nil
				s.loading = true
				s.fetching = false
			case "s":
				state.EnvVars["TUSK_GEMINI_MODEL"] = defaultModel
				return nil, nil
			}
			return s, nil
		}

		if msg.String() == "enter" {
			wasFiltering := s.list.FilterState() == list.Filtering
			s.list, cmd = s.list.Update(msg)

			if wasFiltering || s.list.FilterState() == list.Filtering {
				return s, cmd
			}

			if i, ok := s.list.SelectedItem().(item); ok {
				state.EnvVars["TUSK_GEMINI_MODEL"] = i.id
				return nil, nil
			}
			return s, cmd
		}
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error fetching models: %v", s.err)) +
			"\n\nCheck your API key and internet connection.\n\n" +
			"(press enter to retry, s to keep " + defaultModel + ", ctrl+c to quit)\n"
	}
	if s.loading {
		return "Fetching models from Gemini...\n"
	}
	return s.list.View()
}
