// Package bloom provides the "have I seen this key before" sets used by the
// detectors to avoid inspecting the same URL twice.
//
// # Scalable filter
//
// Scalable is a scalable Bloom filter: an ordered list of fixed-size
// partitioned Bloom filters ("segments"). Keys are added to the last
// segment; when it reaches its capacity a new segment is appended with a
// larger capacity and a tighter false-positive target. Existing segments are
// never rehashed, so a key once added is reported as present for the life of
// the filter.
//
// Segment i targets an error rate of
//
//	errorRate × (1 − ratio) × ratio^i
//
// so the sum over all segments never exceeds errorRate.
//
// # Exact set
//
// ExactSet is a drop-in replacement backed by a map. It never reports false
// positives, at the cost of memory proportional to the number of keys.
//
// All types in this package are safe for concurrent use.
package bloom
