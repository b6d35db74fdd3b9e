package bloom

import (
	"math"

	xxhash "github.com/cespare/xxhash/v2"
)

// Filter is a fixed-capacity partitioned Bloom filter.
// The bit array is split into one slice per hash function, so every key
// sets exactly one bit in each slice.
//
// Filter is not safe for concurrent use on its own; Scalable serializes
// access to its segments.
type Filter struct {
	capacity     int
	errorRate    float64
	slices       int
	bitsPerSlice uint64
	bits         []uint64
	count        int
}

// NewFilter creates a filter that holds capacity keys at the given
// false-positive rate.
func NewFilter(capacity int, errorRate float64) (*Filter, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if errorRate <= 0 || errorRate >= 1 {
		return nil, ErrInvalidErrorRate
	}

	slices := int(math.Ceil(math.Log2(1 / errorRate)))
	bitsPerSlice := uint64(math.Ceil(
		float64(capacity) * math.Abs(math.Log(errorRate)) / (float64(slices) * math.Ln2 * math.Ln2),
	))
	if bitsPerSlice == 0 {
		bitsPerSlice = 1
	}
	total := bitsPerSlice * uint64(slices)

	return &Filter{
		capacity:     capacity,
		errorRate:    errorRate,
		slices:       slices,
		bitsPerSlice: bitsPerSlice,
		bits:         make([]uint64, (total+63)/64),
	}, nil
}

// Add inserts key and reports whether it was already present.
// The count only grows for keys that were not present.
func (f *Filter) Add(key []byte) bool {
	h1, h2 := hashes(key)
	present := true
	for i := 0; i < f.slices; i++ {
		pos := f.position(i, h1, h2)
		word, mask := pos/64, uint64(1)<<(pos%64)
		if f.bits[word]&mask == 0 {
			present = false
			f.bits[word] |= mask
		}
	}
	if !present {
		f.count++
	}
	return present
}

// Contains reports whether key may have been added.
func (f *Filter) Contains(key []byte) bool {
	h1, h2 := hashes(key)
	for i := 0; i < f.slices; i++ {
		pos := f.position(i, h1, h2)
		if f.bits[pos/64]&(uint64(1)<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Full reports whether the filter holds as many keys as its capacity.
func (f *Filter) Full() bool {
	return f.count >= f.capacity
}

// Count returns the number of keys added.
func (f *Filter) Count() int {
	return f.count
}

// Capacity returns the number of keys the filter was sized for.
func (f *Filter) Capacity() int {
	return f.capacity
}

// ErrorRate returns the target false-positive rate at capacity.
func (f *Filter) ErrorRate() float64 {
	return f.errorRate
}

// position returns the bit index for slice i using double hashing.
func (f *Filter) position(i int, h1, h2 uint64) uint64 {
	return uint64(i)*f.bitsPerSlice + (h1+uint64(i)*h2)%f.bitsPerSlice
}

// hashes derives two independent 64-bit hashes from one xxhash sum.
// The second is a splitmix64 finalization of the first, forced odd so the
// probe sequence never collapses.
func hashes(key []byte) (uint64, uint64) {
	h1 := xxhash.Sum64(key)
	h2 := h1 + 0x9e3779b97f4a7c15
	h2 = (h2 ^ (h2 >> 30)) * 0xbf58476d1ce4e5b9
	h2 = (h2 ^ (h2 >> 27)) * 0x94d049bb133111eb
	h2 ^= h2 >> 31
	return h1, h2 | 1
}
