package bloom

import "sync"

// ExactSet is a Set backed by a map. It has no false positives and grows
// without bound.
type ExactSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewExactSet creates an empty ExactSet.
func NewExactSet() *ExactSet {
	return &ExactSet{seen: make(map[string]struct{})}
}

// Add records key as seen.
func (e *ExactSet) Add(key []byte) {
	e.TestAndAdd(key)
}

// Contains reports whether key was added before.
func (e *ExactSet) Contains(key []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.seen[string(key)]
	return ok
}

// TestAndAdd adds key and reports whether it was already present.
func (e *ExactSet) TestAndAdd(key []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.seen[string(key)]; ok {
		return true
	}
	e.seen[string(key)] = struct{}{}
	return false
}

// Len returns the number of distinct keys added.
func (e *ExactSet) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.seen)
}

var _ Set = (*ExactSet)(nil)
