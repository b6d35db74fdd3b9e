package document

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/grepscan/internal/model"
)

// ParseResult contains what is extracted from an HTML body.
type ParseResult struct {
	// Root is the element tree. The html element for well-formed and
	// malformed input alike, since the parser inserts it.
	Root *model.Node

	// Text is the text and comment content. Text inside inline elements
	// runs on unbroken; block elements and comments start a new line.
	Text string

	// Title is the page title from the <title> tag.
	Title string

	// Comments contains the HTML comments.
	Comments []string
}

// ParseHTML parses HTML content into an element tree and clear text.
//
// golang.org/x/net/html is used rather than patterns since it handles the
// malformed markup common on the web the way browsers do.
func ParseHTML(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{Comments: make([]string, 0)}
	var text strings.Builder

	var walk func(n *html.Node, parent *model.Node)
	walk = func(n *html.Node, parent *model.Node) {
		block := false
		switch n.Type {
		case html.ElementNode:
			block = blockElements[n.Data]
			el := &model.Node{Tag: n.Data, Attrs: attrs(n)}
			if n.Data == "title" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				result.Title = strings.TrimSpace(n.FirstChild.Data)
			}
			if parent == nil {
				result.Root = el
			} else {
				parent.Children = append(parent.Children, el)
			}
			parent = el
		case html.TextNode:
			text.WriteString(n.Data)
		case html.CommentNode:
			result.Comments = append(result.Comments, n.Data)
			text.WriteByte('\n')
			text.WriteString(n.Data)
			text.WriteByte('\n')
		}

		if block {
			text.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, parent)
		}
		if block {
			text.WriteByte('\n')
		}
	}
	walk(doc, nil)

	result.Text = tidyLines(text.String())
	return result, nil
}

// blockElements start and end a line of clear text. Everything else is
// inline and its text joins the surrounding text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "head": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "option": true, "p": true,
	"pre": true, "section": true, "table": true, "td": true, "th": true,
	"title": true, "tr": true, "ul": true, "script": true, "style": true,
	"noscript": true, "select": true, "textarea": true,
}

// tidyLines trims every line and drops the empty ones.
func tidyLines(s string) string {
	var b strings.Builder
	for line := range strings.Lines(s) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

// attrs returns the attributes of an element node keyed by lower-case name.
// The first occurrence of a repeated attribute wins, as in browsers.
func attrs(n *html.Node) map[string]string {
	if len(n.Attr) == 0 {
		return nil
	}
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if _, ok := m[key]; !ok {
			m[key] = a.Val
		}
	}
	return m
}
