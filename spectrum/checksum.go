package spectrum

import "github.com/cespare/xxhash/v2"

// Checksum computes the content hash recorded alongside each persisted scan
// blob.
//
// The hash is xxHash64 over the compressed blob bytes. It is a corruption
// check, not a cryptographic signature: readers recompute it on load and
// reject scans whose stored hash no longer matches (errs.ErrChecksumMismatch).
//
// An empty blob (all-zero spectrum) hashes like any other byte string, so
// the stored value is always meaningful.
func Checksum(blob []byte) uint64 {
	return xxhash.Sum64(blob)
}
