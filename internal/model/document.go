package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// MaxBodySize is the maximum size of a document body in bytes.
// Larger bodies are truncated to this size.
const MaxBodySize = 5 * 1024 * 1024 // 5 MB

// Document represents one HTTP response to be inspected by the detectors.
// A Document is immutable once handed to a detector; detectors only read it.
//
// Design decision: We store both the raw body and a clear-text snapshot because:
// 1. Marker detection must see HTML comments and markup verbatim
// 2. Numeric detection should not be confused by tags and attributes
// 3. Parsing once up front keeps detectors free of parsing concerns
type Document struct {
	// URL is the URL the response was fetched from.
	// It is the deduplication key of the detectors.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the media type of the response without parameters.
	ContentType string `json:"content_type"`

	// Headers contains all HTTP response headers.
	Headers Headers `json:"headers"`

	// Body is the raw response body. Empty when the response had no body.
	Body string `json:"-"`

	// Snapshot is the text content of the body with markup removed.
	// Only populated for HTML documents.
	Snapshot string `json:"snapshot,omitempty"`

	// Root is the parsed element tree. Nil when the body is not HTML
	// or could not be parsed.
	Root *Node `json:"-"`
}

// HasBody reports whether the document carries a body.
func (d *Document) HasBody() bool {
	return d.Body != ""
}

// ClearText returns the body with markup removed.
// Falls back to the raw body for documents that were never parsed as HTML.
// A parsed document always yields its snapshot, even when that is empty.
func (d *Document) ClearText() string {
	if d.Root != nil {
		return d.Snapshot
	}
	return d.Body
}

// IsHTML returns true if the content type indicates HTML.
func (d *Document) IsHTML() bool {
	return d.ContentType == "text/html" || d.ContentType == "application/xhtml+xml"
}

// IsTextOrHTML returns true for any text/* type and for HTML.
// Other application/* types such as JSON are not scanned.
func (d *Document) IsTextOrHTML() bool {
	return d.IsHTML() || strings.HasPrefix(d.ContentType, "text/")
}

// Headers maps header names to their values.
// Lookups ignore the case of the header name.
type Headers map[string][]string

var headerFold = cases.Fold()

// Values returns all values of the named header.
// Returns nil if the header is not present.
func (h Headers) Values(name string) []string {
	want := headerFold.String(name)
	var out []string
	for k, v := range h {
		if headerFold.String(k) == want {
			out = append(out, v...)
		}
	}
	return out
}

// Get returns the first value of the named header, or "" if absent.
func (h Headers) Get(name string) string {
	if v := h.Values(name); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Node is an element of a parsed HTML document.
// Text and comment nodes are not represented; the tree only carries
// what structural queries need.
type Node struct {
	// Tag is the lower-case element name.
	Tag string `json:"tag"`

	// Attrs maps lower-case attribute names to their values.
	Attrs map[string]string `json:"attrs,omitempty"`

	// Children are the element children in document order.
	Children []*Node `json:"children,omitempty"`
}

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// FindAll returns every element in the subtree rooted at n (n included)
// whose tag equals tag, in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Tag == tag {
			out = append(out, cur)
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}
