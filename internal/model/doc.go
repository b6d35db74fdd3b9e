// Package model defines the core data structures used throughout grepscan.
//
// This package contains the following main types:
//   - Document: An HTTP response handed to the detectors
//   - Node: An element of a document's parsed HTML tree
//   - Finding: A single detected condition
//   - Report: The summarized result of a scan session
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The document parser, detectors, store, reports and database
// all exchange these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
