// Package encoding implements the run-length-zero encoding (RLZE) stage of
// the spectrum codec, together with the fixed-width token serializer.
//
// An ion-mobility scan is a dense intensity vector indexed by time-of-flight
// bin, and the overwhelming majority of bins are zero. RLZE collapses each
// run of consecutive zero bins into a single negative token while keeping
// every non-zero intensity as a literal token:
//
//	input:  [0 0 0 57 12 0 0 0 0 3]
//	tokens: [-3 57 12 -4 3]
//
// Decoding walks the tokens in order; a trailing zero-run is never stored,
// so "sequence exhausted" means "remaining bins are zero".
//
// # Numeric Widths
//
// Encoding is generic over the four supported intensity widths (int16,
// int32, float32, float64). Run-length tokens are bounded by each width's
// representable magnitude; longer runs flush into multiple adjacent tokens
// (see EncodeRLZE). Summary statistics (TIC, BPI, non-zero count) are
// computed in the same pass and always accumulated in float64.
//
// # Serialization
//
// AppendTokens and DeserializeTokens convert token sequences to and from
// their fixed-width little-endian byte layout (2/4/4/8 bytes per token).
// The byte payload is what the block compressor in the compress package
// operates on; the numeric width is never embedded in the payload and must
// be supplied out of band.
//
// # Thread Safety
//
// All functions in this package are pure and safe for concurrent use.
package encoding
