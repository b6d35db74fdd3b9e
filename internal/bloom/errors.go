package bloom

import "errors"

// Parameter validation errors returned by the constructors.
var (
	// ErrInvalidErrorRate is returned when the error rate is not in (0, 1).
	ErrInvalidErrorRate = errors.New("invalid error rate: must be between 0 and 1 (exclusive)")

	// ErrInvalidCapacity is returned when the capacity is not positive.
	ErrInvalidCapacity = errors.New("invalid capacity: must be positive")

	// ErrInvalidRatio is returned when the tightening ratio is not in (0, 1).
	ErrInvalidRatio = errors.New("invalid tightening ratio: must be between 0 and 1 (exclusive)")

	// ErrInvalidGrowth is returned when the growth factor is less than 1.
	ErrInvalidGrowth = errors.New("invalid growth factor: must be at least 1")
)
