package analysis

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
)

const MaxLogRunes = 5000

var ErrEmptyLog = errors.New("log_text must not be empty")

const systemPrompt = `You are a senior site reliability engineer.
Read the log excerpt and answer in three short sections:
1. What went wrong (quote the decisive lines).
2. The most likely root cause.
3. Concrete next steps.
If the log shows no problem, say so.`

// Analyzer asks the chat model to explain a log excerpt. It keeps no history.
type Analyzer struct {
	model core.ChatModel
}

func NewAnalyzer(model core.ChatModel) *Analyzer {
	return &Analyzer{model: model}
}

func (a *Analyzer) Analyze(ctx context.Context, logText string) (core.Reply, error) {
	if strings.TrimSpace(logText) == "" {
		return core.Reply{}, ErrEmptyLog
	}

	excerpt := Tail(logText, MaxLogRunes)
	bundle := core.PromptBundle{
		System:      systemPrompt,
		UserMessage: "Log excerpt:\n```\n" + excerpt + "\n```",
	}

	text, err := a.model.Generate(ctx, bundle)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("log analysis failed")
		return core.Reply{
			Text:   "AI error: " + err.Error(),
			Model:  a.model.Name(),
			Failed: true,
			Reason: err.Error(),
		}, nil
	}
	return core.Reply{Text: text, Model: a.model.Name()}, nil
}

// Tail keeps the last n runes of s.
func Tail(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[len(r)-n:])
}
