package matcher

import (
	"regexp"

	"github.com/nao1215/grepscan/internal/model"
)

// Structural queries a document's element tree. It selects container
// elements by tag, then their descendant elements by tag that carry an
// attribute, and tests the attribute value against a case-insensitive
// pattern.
type Structural struct {
	container string
	element   string
	attr      string
	re        *regexp.Regexp
}

// NewStructural creates a structural matcher. pattern is matched
// case-insensitively anywhere in the attribute value.
func NewStructural(container, element, attr, pattern string) (*Structural, error) {
	re, err := compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	return &Structural{
		container: container,
		element:   element,
		attr:      attr,
		re:        re,
	}, nil
}

// Containers returns the container elements in document order.
func (s *Structural) Containers(root *model.Node) []*model.Node {
	return root.FindAll(s.container)
}

// Candidates returns the elements inside container that carry the
// attribute, whatever its value.
func (s *Structural) Candidates(container *model.Node) []*model.Node {
	var out []*model.Node
	for _, child := range container.FindAll(s.element) {
		if child == container {
			continue
		}
		if _, ok := child.Attr(s.attr); ok {
			out = append(out, child)
		}
	}
	return out
}

// FindIn returns the attribute values inside container that match the
// pattern.
func (s *Structural) FindIn(container *model.Node) []Match {
	var out []Match
	for _, el := range s.Candidates(container) {
		v, _ := el.Attr(s.attr)
		if s.re.MatchString(v) {
			out = append(out, Match{Value: v, Source: s.attr})
		}
	}
	return out
}

// FindAll returns the matching attribute values across every container
// in the tree. A nil tree yields no matches.
func (s *Structural) FindAll(root *model.Node) []Match {
	var out []Match
	for _, c := range s.Containers(root) {
		out = append(out, s.FindIn(c)...)
	}
	return out
}
