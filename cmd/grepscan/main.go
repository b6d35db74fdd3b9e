// Package main provides the entry point for the grepscan CLI.
//
// grepscan inspects already-fetched HTTP responses for leaked payment card
// numbers, Oracle Application Server pages, and Symfony forms without CSRF
// protection.
//
// Usage:
//
//	grepscan scan <dump-file-or-dir>...
//	grepscan history [--id N]
//
// See --help for all available options.
package main

// main is the entry point for grepscan.
func main() {
	Execute()
}
