package telegram

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/tuskdash/pkg/conv"
	"github.com/sandevgo/tuskdash/pkg/log"
	tele "gopkg.in/telebot.v3"
)

// Telegram rejects messages above 4096 characters.
const maxMessageLen = 4000

// sender delivers Markdown to one chat as Telegram HTML.
type sender struct {
	bot *tele.Bot
	to  tele.Recipient
}

func newSender(bot *tele.Bot, to tele.Recipient) *sender {
	return &sender{bot: bot, to: to}
}

func (s *sender) sendMarkdown(ctx context.Context, md string) error {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))

	for i, chunk := range splitHTML(html, maxMessageLen) {
		if _, err := s.bot.Send(s.to, chunk, tele.ModeHTML, tele.NoPreview); err != nil {
			log.FromCtx(ctx).Error().
				Err(err).
				Int("chunk", i).
				Int("len", len(chunk)).
				Msg("failed to send telegram message")
			return err
		}
	}
	return nil
}

// splitHTML cuts text into chunks of at most maxLen bytes, preferring line
// breaks in the latter two thirds of a chunk and never splitting a rune.
func splitHTML(text string, maxLen int) []string {
	var chunks []string
	for len(text) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if idx := strings.LastIndexByte(text[:cut], '\n'); idx > maxLen/3 {
			cut = idx
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" || len(chunks) == 0 {
		chunks = append(chunks, text)
	}
	return chunks
}
