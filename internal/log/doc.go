// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Masking of payment card numbers that pass the Luhn check
//   - Configurable log levels with verbose mode support
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (passwords, tokens, keys)
//   - Session identifiers and authentication tokens
//   - Card numbers embedded anywhere in a string value, e.g. a finding
//     description, reduced to their last four digits
//
// A scanner that finds disclosed card numbers must not disclose them again
// through its own logs, so masking applies even in verbose mode.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("finding recorded",
//	    "description", `discloses "4417 1234 5678 9113"`, // logged as "****9113"
//	    "url", "http://example.com/",
//	)
//
//	slog.SetDefault(logger)
package log
