// Package document turns raw HTTP responses into model.Document values.
//
// A response dump is an HTTP/1.x response as it appears on the wire:
// status line, headers, blank line, body. Dumps are read with
// net/http.ReadResponse, so chunked transfer encoding is handled.
//
// For HTML responses the body is parsed with golang.org/x/net/html into
// an element tree (model.Node) and a clear-text snapshot with markup
// removed. Parsing happens once here so detectors only read.
//
// The document URL comes from the caller, from an X-Grepscan-Url header
// in the dump, or, for files, from the file path.
package document
