package spectrum

import (
	"fmt"

	"github.com/driftlab/imsf/compress"
	"github.com/driftlab/imsf/encoding"
	"github.com/driftlab/imsf/endian"
	"github.com/driftlab/imsf/errs"
	"github.com/driftlab/imsf/format"
	"github.com/driftlab/imsf/internal/pool"
)

// Stats re-exports the summary statistics computed by the encoding pass.
type Stats = encoding.Stats

var engine = endian.GetLittleEndianEngine()

// WidthOf returns the persisted intensity width for the type parameter T.
func WidthOf[T encoding.Intensity]() format.IntensityWidth {
	var zero T
	switch any(zero).(type) {
	case int16:
		return format.WidthInt16
	case int32:
		return format.WidthInt32
	case float32:
		return format.WidthFloat32
	default: // float64
		return format.WidthFloat64
	}
}

// ToBlob encodes an intensity vector into its persisted blob form.
//
// The pipeline is RLZE encoding, fixed-width little-endian token
// serialization, then block compression. Summary statistics (non-zero
// count, TIC, BPI, BPI index) are computed during the encoding pass and
// returned alongside the blob so writers can persist them without a second
// traversal.
//
// ToBlob is a pure function over its inputs and safe for concurrent use.
//
// Parameters:
//   - intensities: Dense intensity vector indexed by bin number
//   - codec: Block compressor for the serialized token payload
//
// Returns:
//   - []byte: Persisted blob (caller-owned)
//   - Stats: Summary statistics over the input vector
//   - error: Compression error if any
func ToBlob[T encoding.Intensity](intensities []T, codec compress.Codec) ([]byte, Stats, error) {
	tokens, stats := encoding.EncodeRLZE(intensities)

	bb := pool.GetSpectrumBuffer()
	defer pool.PutSpectrumBuffer(bb)

	bb.B = encoding.AppendTokens(engine, bb.B, tokens)

	compressed, err := codec.Compress(bb.Bytes())
	if err != nil {
		return nil, Stats{}, fmt.Errorf("compress spectrum payload: %w", err)
	}

	// The no-op codec returns the pooled buffer's memory; copy so the blob
	// outlives the buffer's return to the pool.
	blob := make([]byte, len(compressed))
	copy(blob, compressed)

	return blob, stats, nil
}

// FromBlob decodes a persisted blob back into a dense intensity vector of
// length bins.
//
// The numeric width is supplied out of band through the type parameter; it
// is never embedded in the blob. An RLZE token covers at least one bin, so
// bins bounds the token count and sizes the decompression buffer exactly
// once.
//
// Parameters:
//   - blob: Persisted blob from ToBlob
//   - bins: Length of the reconstructed vector
//   - codec: Block compressor the blob was written with
//
// Returns:
//   - []T: Dense intensity vector of length bins
//   - error: errs.ErrCorruptData if the payload violates a length or shape invariant
func FromBlob[T encoding.Intensity](blob []byte, bins int, codec compress.Codec) ([]T, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bin count %d", errs.ErrInvalidArgument, bins)
	}

	payload, err := codec.Decompress(blob, bins*encoding.TokenSize[T]())
	if err != nil {
		return nil, fmt.Errorf("%w: decompress spectrum payload: %v", errs.ErrCorruptData, err)
	}

	tokens, err := encoding.DeserializeTokens[T](engine, payload)
	if err != nil {
		return nil, err
	}

	return encoding.DecodeRLZE(tokens, bins)
}

// EachPeak walks the non-zero (bin, intensity) pairs of a blob at a runtime
// width without materializing the dense intensity vector.
//
// This is the streaming decode path used by the bin-centric index builder
// and the spectrum cache, where only the peaks matter and the dataset's
// width is known at runtime rather than compile time. Intensities are
// widened to float64.
//
// fn returning false stops the walk early without error.
//
// Parameters:
//   - blob: Persisted blob from ToBlob
//   - width: Intensity width the dataset was written at
//   - bins: Bin count of the spectrum
//   - codec: Block compressor the blob was written with
//   - fn: Callback invoked once per non-zero bin in ascending bin order
//
// Returns:
//   - error: errs.ErrCorruptData on payload invariant violations,
//     errs.ErrInvalidArgument on an unknown width
func EachPeak(blob []byte, width format.IntensityWidth, bins int, codec compress.Codec, fn func(bin int, intensity float64) bool) error {
	switch width {
	case format.WidthInt16:
		return eachPeak[int16](blob, bins, codec, fn)
	case format.WidthInt32:
		return eachPeak[int32](blob, bins, codec, fn)
	case format.WidthFloat32:
		return eachPeak[float32](blob, bins, codec, fn)
	case format.WidthFloat64:
		return eachPeak[float64](blob, bins, codec, fn)
	default:
		return fmt.Errorf("%w: intensity width %s", errs.ErrInvalidArgument, width)
	}
}

func eachPeak[T encoding.Intensity](blob []byte, bins int, codec compress.Codec, fn func(bin int, intensity float64) bool) error {
	if bins <= 0 {
		return fmt.Errorf("%w: bin count %d", errs.ErrInvalidArgument, bins)
	}

	payload, err := codec.Decompress(blob, bins*encoding.TokenSize[T]())
	if err != nil {
		return fmt.Errorf("%w: decompress spectrum payload: %v", errs.ErrCorruptData, err)
	}

	tokens, err := encoding.DeserializeTokens[T](engine, payload)
	if err != nil {
		return err
	}

	pos := 0
	for _, tok := range tokens {
		switch {
		case tok > 0:
			if pos >= bins {
				return fmt.Errorf("%w: token sequence reconstructs more than %d bins", errs.ErrCorruptData, bins)
			}
			if !fn(pos, float64(tok)) {
				return nil
			}
			pos++
		case tok < 0:
			run := int(-float64(tok))
			if pos+run > bins {
				return fmt.Errorf("%w: zero run of %d at bin %d exceeds %d bins", errs.ErrCorruptData, run, pos, bins)
			}
			pos += run
		default:
			if pos >= bins {
				return fmt.Errorf("%w: token sequence reconstructs more than %d bins", errs.ErrCorruptData, bins)
			}
			pos++
		}
	}

	return nil
}
