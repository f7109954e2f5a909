// Package binindex builds and queries the bin-major representation of a
// dataset: one row per non-zero (bin, frame, scan, intensity) point, grouped
// by bin, so mass-range queries read a narrow slice of the index instead of
// decoding every scan.
//
// The index is entirely derived from frame-major data and can be dropped
// and rebuilt at any time. A rebuild is a single long-lived operation; run
// it off the request path and do not query the index while a rebuild of the
// same dataset is in flight.
package binindex
