package matcher

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/nao1215/grepscan/internal/model"
)

// Text applies a regular expression to a document body.
type Text struct {
	re *regexp.Regexp

	// group selects which capture group is reported as the match value.
	// Zero means the whole match.
	group int
}

// TextOption configures a Text matcher.
type TextOption func(*Text)

// WithValueGroup reports capture group n as the match value instead of the
// whole match. Useful when the pattern consumes surrounding delimiters.
func WithValueGroup(n int) TextOption {
	return func(t *Text) {
		t.group = n
	}
}

// NewText compiles pattern into a Text matcher.
func NewText(pattern string, opts ...TextOption) (*Text, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	t := &Text{re: re}
	for _, opt := range opts {
		opt(t)
	}
	if t.group < 0 || t.group > re.NumSubexp() {
		return nil, ErrInvalidPattern
	}
	return t, nil
}

// FindAll returns every non-overlapping match in s, in order.
func (t *Text) FindAll(s string) []Match {
	if s == "" {
		return nil
	}

	var out []Match
	for _, loc := range t.re.FindAllStringSubmatchIndex(s, -1) {
		groups := make([]string, 0, len(loc)/2-1)
		for g := 2; g+1 < len(loc); g += 2 {
			if loc[g] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, s[loc[g]:loc[g+1]])
		}

		start, end := loc[2*t.group], loc[2*t.group+1]
		if start < 0 {
			continue
		}
		out = append(out, Match{
			Value:  s[start:end],
			Start:  start,
			End:    end,
			Groups: groups,
			Source: "body",
		})
	}
	return out
}

// MatchString reports whether s contains a match.
func (t *Text) MatchString(s string) bool {
	return s != "" && t.re.MatchString(s)
}

// String returns the source pattern.
func (t *Text) String() string {
	return t.re.String()
}

// Literal searches for fixed marker strings.
type Literal struct {
	markers []string
}

// NewLiteral creates a Literal matcher for the given markers.
// Empty markers are ignored.
func NewLiteral(markers ...string) *Literal {
	l := &Literal{markers: make([]string, 0, len(markers))}
	for _, m := range markers {
		if m != "" {
			l.markers = append(l.markers, m)
		}
	}
	return l
}

// Markers returns the markers searched for.
func (l *Literal) Markers() []string {
	return l.markers
}

// FindAll returns the first occurrence of each marker contained in s.
func (l *Literal) FindAll(s string) []Match {
	if s == "" {
		return nil
	}

	var out []Match
	for _, m := range l.markers {
		if idx := strings.Index(s, m); idx >= 0 {
			out = append(out, Match{Value: m, Start: idx, End: idx + len(m), Source: "body"})
		}
	}
	return out
}

// FindInHeaders returns the first occurrence of each marker found in any
// header value. Match.Source holds the header name; offsets are relative
// to that value. Headers are searched in name order.
func (l *Literal) FindInHeaders(h model.Headers) []Match {
	var out []Match
	names := slices.Sorted(maps.Keys(h))
	for _, m := range l.markers {
	headers:
		for _, name := range names {
			for _, v := range h[name] {
				if idx := strings.Index(v, m); idx >= 0 {
					out = append(out, Match{Value: m, Start: idx, End: idx + len(m), Source: name})
					break headers
				}
			}
		}
	}
	return out
}
