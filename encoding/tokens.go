package encoding

import (
	"fmt"
	"math"

	"github.com/driftlab/imsf/endian"
	"github.com/driftlab/imsf/errs"
)

// TokenSize returns the number of bytes one serialized token of type T occupies.
func TokenSize[T Intensity]() int {
	var zero T
	switch any(zero).(type) {
	case int16:
		return 2
	case int32, float32:
		return 4
	default: // float64
		return 8
	}
}

// AppendTokens appends the fixed-width serialization of tokens to dst and
// returns the extended slice.
//
// Each token is written in the byte order of the supplied engine (the
// persisted blob layout is little-endian). Integer tokens are written as
// their two's-complement bit patterns, float tokens as their IEEE 754 bit
// patterns, so negative zero-run tokens round-trip exactly.
//
// Parameters:
//   - engine: Endian engine for byte order
//   - dst: Destination slice (may be nil)
//   - tokens: RLZE token sequence from EncodeRLZE
//
// Returns:
//   - []byte: dst with len(tokens)*TokenSize[T]() bytes appended
func AppendTokens[T Intensity](engine endian.EndianEngine, dst []byte, tokens []T) []byte {
	switch toks := any(tokens).(type) {
	case []int16:
		for _, tok := range toks {
			dst = engine.AppendUint16(dst, uint16(tok))
		}
	case []int32:
		for _, tok := range toks {
			dst = engine.AppendUint32(dst, uint32(tok))
		}
	case []float32:
		for _, tok := range toks {
			dst = engine.AppendUint32(dst, math.Float32bits(tok))
		}
	case []float64:
		for _, tok := range toks {
			dst = engine.AppendUint64(dst, math.Float64bits(tok))
		}
	}

	return dst
}

// DeserializeTokens parses a fixed-width token payload back into an RLZE
// token sequence.
//
// Parameters:
//   - engine: Endian engine for byte order (must match the serializer's)
//   - data: Serialized token payload
//
// Returns:
//   - []T: RLZE token sequence
//   - error: errs.ErrCorruptData if len(data) is not a multiple of the token size
func DeserializeTokens[T Intensity](engine endian.EndianEngine, data []byte) ([]T, error) {
	size := TokenSize[T]()
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: payload length %d is not a multiple of token size %d", errs.ErrCorruptData, len(data), size)
	}

	count := len(data) / size
	tokens := make([]T, count)

	switch toks := any(tokens).(type) {
	case []int16:
		for i := 0; i < count; i++ {
			toks[i] = int16(engine.Uint16(data[i*2 : i*2+2]))
		}
	case []int32:
		for i := 0; i < count; i++ {
			toks[i] = int32(engine.Uint32(data[i*4 : i*4+4]))
		}
	case []float32:
		for i := 0; i < count; i++ {
			toks[i] = math.Float32frombits(engine.Uint32(data[i*4 : i*4+4]))
		}
	case []float64:
		for i := 0; i < count; i++ {
			toks[i] = math.Float64frombits(engine.Uint64(data[i*8 : i*8+8]))
		}
	}

	return tokens, nil
}
