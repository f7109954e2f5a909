package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/driftlab/imsf/errs"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// Block framing markers. LZ4 block compression can expand or refuse
// incompressible input, so one leading byte records whether the payload is
// stored raw or as an LZ4 block. Worst-case overhead is exactly one byte.
const (
	lz4FrameStored byte = 0x00
	lz4FrameBlock  byte = 0x01
)

// LZ4Compressor is the canonical block compressor for spectrum payloads.
//
// It is an LZ77-family dictionary scheme: repeated byte substrings within a
// bounded recent window become (offset, length) back-references interleaved
// with literal bytes. RLZE output is short but locally repetitive, which is
// exactly the shape block-level LZ4 handles well.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 block compressor.
//
// Returns:
//   - LZ4Compressor: New LZ4 compressor instance
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data as a single LZ4 block.
//
// Uses a pooled lz4.Compressor for better performance. If the block
// compressor cannot shrink the input (fully incompressible data), the
// payload is stored raw behind the one-byte frame marker, so output never
// exceeds len(data)+1 bytes.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed data (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dstSize := lz4.CompressBlockBound(len(data)) + 1
	dst := make([]byte, dstSize)
	dst[0] = lz4FrameBlock

	// Get compressor from pool
	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[1:])
	if err != nil {
		return nil, err
	}

	if n == 0 || n >= len(data) {
		// Incompressible input is stored raw.
		stored := make([]byte, len(data)+1)
		stored[0] = lz4FrameStored
		copy(stored[1:], data)

		return stored, nil
	}

	return dst[:n+1], nil
}

// Decompress decompresses a previously compressed LZ4 payload.
//
// When dstSize is supplied (the caller knows the token payload length) the
// output buffer is sized exactly once. When dstSize is 0 an adaptive
// strategy is used instead:
//  1. Start with a buffer 4x the compressed size (common expansion ratio)
//  2. On ErrInvalidSourceShortBuffer, double the buffer size (up to maxSize)
//  3. Return error if buffer exceeds reasonable limits (prevents memory exhaustion)
//
// Parameters:
//   - data: Compressed data to decompress
//   - dstSize: Expected decompressed length, or 0 if unknown
//
// Returns:
//   - []byte: Decompressed data (nil if input is empty)
//   - error: errs.ErrCorruptData on an unknown frame marker, or the underlying LZ4 error
func (c LZ4Compressor) Decompress(data []byte, dstSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	marker, block := data[0], data[1:]
	switch marker {
	case lz4FrameStored:
		out := make([]byte, len(block))
		copy(out, block)

		return out, nil
	case lz4FrameBlock:
		// handled below
	default:
		return nil, fmt.Errorf("%w: unknown lz4 frame marker 0x%02x", errs.ErrCorruptData, marker)
	}

	if dstSize > 0 {
		buf := make([]byte, dstSize)
		n, err := lz4.UncompressBlock(block, buf)
		if err != nil {
			return nil, err
		}

		return buf[:n], nil
	}

	bufSize := len(block) * 4
	const maxSize = 128 * 1024 * 1024 // 128MB safety limit

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(block, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2 // Double buffer size and retry
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	// Buffer exceeded maxSize - likely corrupted data or unreasonable compression ratio
	return nil, lz4.ErrInvalidSourceShortBuffer
}
