// Package conv converts model and alert Markdown into Telegram-safe HTML.
package conv

import (
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

const bullet = "• "

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = newTelegramPolicy()
)

// newTelegramPolicy allows the subset listed at https://core.telegram.org/bots/api#html-style.
func newTelegramPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("class").OnElements("code")
	return p
}

// telegramHook renders nodes Telegram has no tag for: headings become bold
// lines and list items get a bullet.
func telegramHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch node.(type) {
	case *ast.Heading:
		if entering {
			_, _ = io.WriteString(w, "<b>")
		} else {
			_, _ = io.WriteString(w, "</b>\n")
		}
		return ast.GoToNext, true
	case *ast.ListItem:
		if entering {
			_, _ = io.WriteString(w, bullet)
		} else {
			_, _ = io.WriteString(w, "\n")
		}
		return ast.GoToNext, true
	}
	return ast.GoToNext, false
}

func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags:          htmlFlags,
		RenderNodeHook: telegramHook,
	})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(tgPolicy.SanitizeBytes(unsafeHTML))
}
