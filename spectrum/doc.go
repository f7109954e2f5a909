// Package spectrum implements the public encode/decode contract between
// in-memory intensity vectors and persisted scan blobs.
//
// A blob is the block-compressed, fixed-width little-endian serialization of
// a run-length-zero-encoded intensity vector:
//
//	intensities → RLZE tokens → token payload bytes → compressed blob
//
// ToBlob and FromBlob are the canonical entry points, generic over the four
// intensity widths. The numeric width is supplied out of band (by the
// dataset schema), never embedded in the blob. EachPeak is the streaming
// variant for runtime-width consumers that only need the non-zero peaks,
// such as the bin-centric index builder.
//
// The package also provides:
//   - Checksum: xxHash64 content hash recorded on scan rows for corruption
//     detection
//   - Cache: a frame-range staging structure that decodes each blob once
//     across repeated reads
//   - EncodeInt32: the deprecated 32-bit entry point, a thin adapter over
//     ToBlob[int32]
//
// All codec functions are pure and safe for concurrent use; the Cache is
// single-threaded by contract and must be guarded at the call site.
package spectrum
