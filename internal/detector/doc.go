// Package detector implements the grep detectors that inspect documents
// and record findings.
//
// # Detectors
//
// The set of detectors is closed and dispatched from a fixed registry:
//
//   - credit_cards: digit-grouped sequences in the clear text that pass
//     the Luhn check
//   - oracle: Oracle Application Server markers in the body or headers
//   - symfony: a Symfony session cookie on a page whose forms carry no
//     CSRF token field
//
// # Processing
//
// Every detector runs the same sequence for each document: the eligibility
// check, the URL gate, matching, validation, and recording. The URL gate is
// a per-detector membership filter (see package bloom). A URL is added to
// the filter in the same critical section that commits the document's
// findings to the shared store, so a document either leaves both its URL
// and its findings behind or neither of them.
//
// Matching is pure: it reads the document and returns candidate findings.
// A panic during matching is recovered by Set and reported as an error
// wrapping ErrDetectorPanic; the document's URL is not recorded in that
// case.
package detector
