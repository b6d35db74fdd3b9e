// Package matcher extracts candidate substrings from documents.
//
// The matchers are:
//   - Text: a compiled regular expression applied to a body
//   - Literal: a fixed set of marker strings searched in a body or header values
//   - HeaderPrefix: a pattern that must match the beginning of named header values
//   - Structural: a query over a document's element tree selecting elements
//     inside containers by tag and attribute, testing the attribute value
//
// Matchers never modify the document. Absent input (empty body, nil tree,
// missing header) yields no matches rather than an error. The only error a
// matcher can return is ErrInvalidPattern, at construction time.
package matcher
