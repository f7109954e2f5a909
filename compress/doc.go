// Package compress provides the block compression stage of the spectrum codec.
//
// Spectrum persistence is a two-stage pipeline:
//
//  1. Encoding: run-length zero encoding collapses the long zero runs of a
//     sparse intensity vector (see the encoding package)
//  2. Compression: the serialized token payload is further reduced using a
//     general-purpose byte compressor
//
// This package implements the second stage. The canonical algorithm is
// LZ4 block compression (format.CompressionLZ4), an LZ77-family dictionary
// scheme; Zstd and S2 are available for archival datasets, and None stores
// the token payload verbatim.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte, dstSize int) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Decompress takes the expected decompressed length because the LZ4 block
// format does not record it; callers that persist the token payload length
// (the scan rows do) pass it through, and 0 falls back to adaptive sizing.
//
// # Guarantees
//
// Every codec is byte-exact: Decompress(Compress(x)) == x for all x,
// including empty input (empty output) and fully incompressible input
// (bounded worst-case overhead, one byte for the LZ4 framing marker).
//
// # Thread Safety
//
// All codecs are stateless values safe for concurrent use; internal
// sync.Pool buffers handle encoder/decoder reuse.
package compress
