package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	CopyButtonClass = "copy-btn"
	CopyLabel       = "Copy"
	CopiedLabel     = "Copied!"
)

// CodeBlock is the text of one rendered <pre> block.
type CodeBlock struct {
	Index    int
	Language string
	Code     string
}

// AttachCopyButtons appends a copy button to every <pre> in fragment that
// does not have one yet, and returns the text of every block. Running it on
// its own output changes nothing.
func AttachCopyButtons(fragment string) (string, []CodeBlock, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return "", nil, fmt.Errorf("parse rendered html: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	var blocks []CodeBlock
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
			blocks = append(blocks, CodeBlock{
				Index:    len(blocks),
				Language: codeLanguage(n),
				Code:     strings.TrimRight(textContent(n), "\n"),
			})
			if !hasCopyButton(n) {
				n.AppendChild(newCopyButton())
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(container)

	var b strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", nil, fmt.Errorf("render html: %w", err)
		}
	}
	return b.String(), blocks, nil
}

func newCopyButton() *html.Node {
	btn := &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr:     []html.Attribute{{Key: "class", Val: CopyButtonClass}},
	}
	btn.AppendChild(&html.Node{Type: html.TextNode, Data: CopyLabel})
	return btn
}

func hasCopyButton(pre *html.Node) bool {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Button && hasClass(c, CopyButtonClass) {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == class {
				return true
			}
		}
	}
	return false
}

// codeLanguage reads the language from a child <code class="language-x"> or data-lang.
func codeLanguage(pre *html.Node) string {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Code {
			continue
		}
		for _, a := range c.Attr {
			switch a.Key {
			case "data-lang":
				return a.Val
			case "class":
				for _, f := range strings.Fields(a.Val) {
					if strings.HasPrefix(f, "language-") {
						return strings.TrimPrefix(f, "language-")
					}
				}
			}
		}
	}
	return ""
}

// textContent is the node's text without any button labels.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Button:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
