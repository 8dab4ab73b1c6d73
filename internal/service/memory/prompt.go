package memory

import (
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/tuskdash/internal/core"
)

const (
	PersonaFileName = "persona.md"
	noneSentinel    = "(none)"
)

// DefaultPersona is used when no persona file is present.
const DefaultPersona = `You are Tusk, the assistant of a personal trading dashboard.
Answer concisely and in the language of the question.
Use the long-term memory and reference documents below when they are relevant; ignore them otherwise.
Never invent figures that are not in the conversation or the documents.`

type SysPrompt struct {
	personaPath string
}

// NewSysPrompt reads the persona from personaPath when the file exists.
func NewSysPrompt(personaPath string) *SysPrompt {
	return &SysPrompt{personaPath: personaPath}
}

func (p *SysPrompt) persona() string {
	if p.personaPath == "" {
		return DefaultPersona
	}
	content, err := os.ReadFile(p.personaPath)
	if err != nil || strings.TrimSpace(string(content)) == "" {
		return DefaultPersona
	}
	return strings.TrimSpace(string(content))
}

// Build assembles the model input. It is deterministic for equal inputs.
func (p *SysPrompt) Build(
	memory []core.Turn,
	knowledge []core.KnowledgeFragment,
	recent []core.Turn,
	userText string,
) core.PromptBundle {
	var sb strings.Builder
	sb.WriteString(p.persona())

	sb.WriteString("\n\n### Long-term memory\n")
	if len(memory) == 0 {
		sb.WriteString(noneSentinel)
	}
	for i, t := range memory {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + oneLine(t.Text))
	}

	sb.WriteString("\n\n### Reference documents\n")
	if len(knowledge) == 0 {
		sb.WriteString(noneSentinel)
	}
	for i, f := range knowledge {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("- [%s] %s", f.Filename, oneLine(f.Text)))
	}

	history := make([]core.PromptTurn, 0, len(recent))
	for _, t := range recent {
		history = append(history, core.PromptTurn{Role: promptRole(t.Role), Text: t.Text})
	}

	return core.PromptBundle{
		System:      sb.String(),
		History:     history,
		UserMessage: userText,
	}
}

func promptRole(role core.Role) string {
	if role == core.RoleAssistant {
		return core.PromptRoleModel
	}
	return core.PromptRoleUser
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
