// Package render turns model answers into display form: sanitized HTML with
// highlighted code, terminal output, and plain text for speech.
package render

import (
	"bytes"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// CodeStyle is the chroma style used for fenced code blocks.
const CodeStyle = "github"

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle(CodeStyle),
			highlighting.WithGuessLanguage(true),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		),
	),
)

var htmlPolicy = newHTMLPolicy()

func newHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("pre", "code", "span", "div", "button")
	p.AllowAttrs("data-lang").OnElements("code")
	return p
}

// HTML renders markdown to sanitized HTML. Fenced code is highlighted with
// chroma CSS classes; see HighlightCSS.
func HTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return htmlPolicy.Sanitize(buf.String()), nil
}

// HighlightCSS returns the stylesheet matching the classes emitted by HTML.
func HighlightCSS() string {
	var b strings.Builder
	f := chromahtml.New(chromahtml.WithClasses(true))
	if err := f.WriteCSS(&b, styles.Get(CodeStyle)); err != nil {
		return ""
	}
	return b.String()
}
