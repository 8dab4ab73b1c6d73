package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	reply  string
	err    error
	bundle core.PromptBundle
}

func (m *stubModel) Generate(_ context.Context, b core.PromptBundle) (string, error) {
	m.bundle = b
	return m.reply, m.err
}
func (m *stubModel) Models(context.Context) ([]string, error) { return nil, nil }
func (m *stubModel) Name() string                              { return "gemini-test" }
func (m *stubModel) Available() bool                           { return true }

func TestAnalyzer_TruncatesToTail(t *testing.T) {
	model := &stubModel{reply: "disk is full"}
	a := NewAnalyzer(model)

	logText := "HEAD-MARKER " + strings.Repeat("x", 6000) + " TAIL-MARKER"
	reply, err := a.Analyze(context.Background(), logText)
	require.NoError(t, err)
	assert.Equal(t, "disk is full", reply.Text)
	assert.False(t, reply.Failed)

	assert.Contains(t, model.bundle.UserMessage, "TAIL-MARKER")
	assert.NotContains(t, model.bundle.UserMessage, "HEAD-MARKER")
	assert.Empty(t, model.bundle.History)
}

func TestAnalyzer_ModelFailure(t *testing.T) {
	a := NewAnalyzer(&stubModel{err: errors.New("rate limited")})

	reply, err := a.Analyze(context.Background(), "panic: nil map")
	require.NoError(t, err)
	assert.True(t, reply.Failed)
	assert.Equal(t, "AI error: rate limited", reply.Text)
}

func TestAnalyzer_EmptyLog(t *testing.T) {
	_, err := NewAnalyzer(&stubModel{}).Analyze(context.Background(), " \n")
	assert.ErrorIs(t, err, ErrEmptyLog)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "abc", Tail("abc", 5))
	assert.Equal(t, "def", Tail("abcdef", 3))

	got := Tail(strings.Repeat("я", 6000), MaxLogRunes)
	assert.Equal(t, MaxLogRunes, utf8.RuneCountInString(got))
}
