package extract

import (
	"bytes"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// HTMLFormat extracts the visible text of saved web pages
type HTMLFormat struct{}

// NewHTMLFormat creates an HTML text extractor
func NewHTMLFormat() *HTMLFormat {
	return &HTMLFormat{}
}

// Name returns the format name
func (f *HTMLFormat) Name() string {
	return "html"
}

// CanHandle checks the extension and the document prologue
func (f *HTMLFormat) CanHandle(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(data))
	if len(head) > 64 {
		head = head[:64]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// Extract parses the HTML and returns its visible text
func (f *HTMLFormat) Extract(data []byte) (*Extracted, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Extracted{Text: visibleText(doc)}, nil
}

// visibleText collects text nodes, skipping non-content elements and
// inserting paragraph breaks after block elements
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				buf.WriteString("\n\n")
			}
		}
	}
	walk(n)

	return collapseBlankLines(buf.String())
}

// collapseBlankLines trims trailing spaces and squeezes runs of blank lines
// down to one paragraph break
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
