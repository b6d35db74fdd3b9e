package bloom

import "sync"

// Default parameters of a scalable filter.
const (
	// DefaultErrorRate is the overall false-positive bound (0.1%).
	DefaultErrorRate = 0.001

	// DefaultInitialCapacity is the capacity of the first segment.
	DefaultInitialCapacity = 100

	// DefaultGrowth multiplies the capacity of each new segment.
	// A small factor keeps memory low for small sets.
	DefaultGrowth = 2

	// DefaultRatio tightens the error rate of each new segment.
	DefaultRatio = 0.9
)

// Set is a set of keys with no removal and no false negatives.
// Both Scalable and ExactSet implement it.
type Set interface {
	// Add records key as seen.
	Add(key []byte)

	// Contains reports whether key was (probably) added before.
	Contains(key []byte) bool

	// TestAndAdd adds key and reports whether it was already present,
	// as a single atomic step.
	TestAndAdd(key []byte) bool
}

// Scalable is a Bloom filter that grows by appending segments.
type Scalable struct {
	mu sync.RWMutex

	// segments are ordered oldest first; only the last one receives keys.
	segments []*Filter

	errorRate       float64
	initialCapacity int
	growth          int
	ratio           float64
}

// Option configures a Scalable filter.
type Option func(*Scalable)

// WithInitialCapacity sets the capacity of the first segment.
func WithInitialCapacity(n int) Option {
	return func(s *Scalable) {
		s.initialCapacity = n
	}
}

// WithGrowth sets the factor by which each new segment's capacity grows.
func WithGrowth(factor int) Option {
	return func(s *Scalable) {
		s.growth = factor
	}
}

// WithRatio sets the factor by which each new segment's error rate shrinks.
func WithRatio(ratio float64) Option {
	return func(s *Scalable) {
		s.ratio = ratio
	}
}

// NewScalable creates an empty scalable filter whose overall false-positive
// rate stays below errorRate however many keys are added.
func NewScalable(errorRate float64, opts ...Option) (*Scalable, error) {
	s := &Scalable{
		errorRate:       errorRate,
		initialCapacity: DefaultInitialCapacity,
		growth:          DefaultGrowth,
		ratio:           DefaultRatio,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.errorRate <= 0 || s.errorRate >= 1 {
		return nil, ErrInvalidErrorRate
	}
	if s.initialCapacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if s.growth < 1 {
		return nil, ErrInvalidGrowth
	}
	if s.ratio <= 0 || s.ratio >= 1 {
		return nil, ErrInvalidRatio
	}
	return s, nil
}

// Add records key as seen.
func (s *Scalable) Add(key []byte) {
	s.TestAndAdd(key)
}

// Contains reports whether key was (probably) added before.
// The check stops at the first segment that contains the key.
func (s *Scalable) Contains(key []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contains(key)
}

// TestAndAdd adds key and reports whether it was already present.
func (s *Scalable) TestAndAdd(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contains(key) {
		return true
	}

	s.activeSegment().Add(key)
	return false
}

// Count returns the number of keys added across all segments.
func (s *Scalable) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, seg := range s.segments {
		n += seg.Count()
	}
	return n
}

// Segments returns the number of segments allocated so far.
func (s *Scalable) Segments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}

// ErrorRate returns the overall false-positive bound.
func (s *Scalable) ErrorRate() float64 {
	return s.errorRate
}

func (s *Scalable) contains(key []byte) bool {
	// Newest segments hold the most keys; check them first.
	for i := len(s.segments) - 1; i >= 0; i-- {
		if s.segments[i].Contains(key) {
			return true
		}
	}
	return false
}

// activeSegment returns the segment that receives new keys, appending a
// larger, tighter one when the current segment is full.
// If the next segment's parameters underflow, the last segment keeps
// receiving keys past its capacity; membership stays exact for added keys.
func (s *Scalable) activeSegment() *Filter {
	if len(s.segments) == 0 {
		// Parameters were validated by NewScalable.
		seg, _ := NewFilter(s.initialCapacity, s.errorRate*(1-s.ratio)) //nolint:errcheck // validated
		s.segments = append(s.segments, seg)
		return seg
	}

	last := s.segments[len(s.segments)-1]
	if !last.Full() {
		return last
	}

	seg, err := NewFilter(last.Capacity()*s.growth, last.ErrorRate()*s.ratio)
	if err != nil {
		return last
	}
	s.segments = append(s.segments, seg)
	return seg
}

var _ Set = (*Scalable)(nil)
