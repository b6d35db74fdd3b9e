package matcher

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern is returned when a pattern does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// Match is a candidate extracted by a matcher.
type Match struct {
	// Value is the matched text.
	Value string

	// Start and End are the byte offsets of Value in the searched text.
	// Both are zero for structural matches.
	Start int
	End   int

	// Groups holds the capture groups of a regular expression match.
	// A group that did not participate is the empty string.
	Groups []string

	// Source names where the match was found: "body", a header name,
	// or an attribute name for structural matches.
	Source string
}

// compile compiles pattern, wrapping failures in ErrInvalidPattern.
func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}
	return re, nil
}
