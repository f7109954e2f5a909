package compress

// ZstdCompressor provides Zstandard compression for spectrum payloads.
//
// This compressor trades speed for ratio, making it the right choice for
// archival datasets that are written once and decoded rarely. The LZ4 block
// compressor remains the default for the interactive read path.
//
// Two implementations exist behind build tags: a cgo binding (valyala/gozstd)
// when cgo is available, and a pure-Go fallback (klauspost/compress/zstd)
// otherwise. Both produce standard Zstd frames and interoperate freely.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
