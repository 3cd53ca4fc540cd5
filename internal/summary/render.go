// Package summary renders stored markdown summaries as HTML or plain text.
package summary

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

// Format is an output representation of a summary.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// ParseFormat accepts markdown, md, html or text. Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "text", "txt", "plain":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown summary format %q", s)
}

// ContentType is the HTTP media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Render converts markdown source to f.
func Render(src string, f Format) (string, error) {
	switch f {
	case FormatHTML:
		return ToHTML(src)
	case FormatText:
		return ToText(src)
	}
	return src, nil
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ToHTML renders markdown with GitHub-flavoured extensions. Raw HTML in the
// source is omitted.
func ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// ToText flattens markdown to plain text: one paragraph per block, list
// items prefixed with "- ".
func ToText(src string) (string, error) {
	rendered, err := ToHTML(src)
	if err != nil {
		return "", err
	}
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return "", fmt.Errorf("parse rendered html: %w", err)
	}

	var blocks []string
	var cur strings.Builder
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			blocks = append(blocks, t)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "br":
				cur.WriteString("\n")
				return
			case "li":
				flush()
				cur.WriteString("- ")
			case "p", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "blockquote", "tr", "hr":
				flush()
			case "td", "th":
				if cur.Len() > 0 {
					cur.WriteString("\t")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "li", "p", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "blockquote", "tr":
				flush()
			}
		}
	}
	walk(doc)
	flush()
	return strings.Join(blocks, "\n\n"), nil
}
