package matcher

import (
	"regexp"

	"github.com/nao1215/grepscan/internal/model"
)

// HeaderPrefix tests whether the values of named headers begin with a
// pattern.
type HeaderPrefix struct {
	names []string
	re    *regexp.Regexp
}

// NewHeaderPrefix creates a matcher testing the values of the named headers
// against pattern, anchored at the start of the value.
func NewHeaderPrefix(pattern string, names ...string) (*HeaderPrefix, error) {
	re, err := compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, err
	}
	return &HeaderPrefix{names: names, re: re}, nil
}

// FindAll returns one match per header value that begins with the pattern.
// Match.Source holds the header name as configured.
func (p *HeaderPrefix) FindAll(h model.Headers) []Match {
	var out []Match
	for _, name := range p.names {
		for _, v := range h.Values(name) {
			loc := p.re.FindStringIndex(v)
			if loc == nil {
				continue
			}
			out = append(out, Match{Value: v[loc[0]:loc[1]], Start: loc[0], End: loc[1], Source: name})
		}
	}
	return out
}

// Matches reports whether any named header value begins with the pattern.
func (p *HeaderPrefix) Matches(h model.Headers) bool {
	for _, name := range p.names {
		for _, v := range h.Values(name) {
			if p.re.MatchString(v) {
				return true
			}
		}
	}
	return false
}
