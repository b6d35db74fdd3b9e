package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and allow callers to use
// errors.Is() while still reading as a human message.
var (
	// ErrNoInput is returned when no response dump is given.
	ErrNoInput = errors.New("no input specified: provide at least one response dump file")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidTimeout is returned when the scan timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidFilterErrorRate is returned when the filter error rate is
	// outside (0, 1).
	ErrInvalidFilterErrorRate = errors.New("invalid filter error rate: must be between 0 and 1")

	// ErrInvalidFilterCapacity is returned when the initial filter capacity
	// is not positive.
	ErrInvalidFilterCapacity = errors.New("invalid filter capacity: must be positive")

	// ErrInvalidFilterGrowth is returned when the filter growth factor is
	// below 1.
	ErrInvalidFilterGrowth = errors.New("invalid filter growth: must be at least 1")

	// ErrInvalidFilterRatio is returned when the filter tightening ratio is
	// outside (0, 1).
	ErrInvalidFilterRatio = errors.New("invalid filter ratio: must be between 0 and 1")
)
