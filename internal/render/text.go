package render

import (
	"html"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
)

var (
	markupChars = strings.NewReplacer("*", "", "#", "", "`", "")
	stripPolicy = bluemonday.StrictPolicy()
)

// PlainText strips markdown emphasis characters and HTML tags so the text can
// be read aloud.
func PlainText(s string) string {
	s = markupChars.Replace(s)
	s = stripPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(s))
}

// TerminalRenderer renders markdown for a terminal, falling back to the raw
// text when glamour is unavailable or fails.
type TerminalRenderer struct {
	r *glamour.TermRenderer
}

func NewTerminalRenderer(width int) *TerminalRenderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &TerminalRenderer{}
	}
	return &TerminalRenderer{r: r}
}

func (t *TerminalRenderer) Render(markdown string) string {
	if t == nil || t.r == nil {
		return markdown
	}
	out, err := t.r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
