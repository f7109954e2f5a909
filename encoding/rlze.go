package encoding

import (
	"fmt"

	"github.com/driftlab/imsf/errs"
)

// Intensity constrains the numeric widths a spectrum may be encoded at.
//
// The four widths match the persisted blob layout: 2 bytes for int16,
// 4 bytes for int32 and float32, 8 bytes for float64.
type Intensity interface {
	~int16 | ~int32 | ~float32 | ~float64
}

// Stats holds the summary statistics computed during a single encoding pass.
//
// TIC and BPI are accumulated in double precision regardless of the intensity
// width, so integer-width spectra cannot overflow the totals.
type Stats struct {
	// NonZeroCount is the number of strictly positive intensities.
	NonZeroCount int

	// TIC is the total ion current: the sum of all intensities.
	TIC float64

	// BPI is the base peak intensity: the maximum single intensity
	// (0 for an all-zero spectrum).
	BPI float64

	// BPIIndex is the bin index of the base peak. Ties keep the earliest
	// index. 0 for an all-zero spectrum.
	BPIIndex int
}

// maxZeroRun returns the largest zero-run magnitude a single token of type T
// can carry.
//
// For the integer widths this is the magnitude of the type's minimum value.
// For the float widths it is the largest contiguous integer the mantissa
// represents exactly, so run lengths never lose precision.
func maxZeroRun[T Intensity]() int64 {
	var zero T
	switch any(zero).(type) {
	case int16:
		return 1 << 15
	case int32:
		return 1 << 31
	case float32:
		return 1 << 24
	default: // float64
		return 1 << 53
	}
}

// EncodeRLZE run-length-zero-encodes an intensity vector in a single forward pass.
//
// A strictly positive input value becomes a literal token; a run of k
// consecutive non-positive values becomes one negative token -k. Summary
// statistics are computed in the same pass.
//
// Two details of the token stream:
//   - A zero-run longer than the width's representable magnitude is flushed
//     as multiple adjacent negative tokens whose magnitudes sum to the true
//     run length (flush-and-continue; no padding zero token is ever emitted).
//   - A zero-run at the very end of the vector is discarded, not flushed;
//     decoders treat sequence exhaustion as "remaining bins are zero".
//
// The base peak comparison uses strict >, so ties keep the earliest index.
//
// Parameters:
//   - intensities: Dense intensity vector indexed by bin number
//
// Returns:
//   - []T: RLZE token sequence
//   - Stats: Summary statistics over the input vector
func EncodeRLZE[T Intensity](intensities []T) ([]T, Stats) {
	var stats Stats

	maxRun := maxZeroRun[T]()
	tokens := make([]T, 0, len(intensities)/4+1)
	var zeroRun int64

	for i, val := range intensities {
		if val <= 0 {
			zeroRun++
			if zeroRun == maxRun {
				// Flush before the counter would overflow the token's
				// signed range, then keep counting.
				tokens = append(tokens, T(-maxRun))
				zeroRun = 0
			}

			continue
		}

		if zeroRun > 0 {
			tokens = append(tokens, T(-zeroRun))
			zeroRun = 0
		}

		tokens = append(tokens, val)

		fval := float64(val)
		stats.NonZeroCount++
		stats.TIC += fval
		if fval > stats.BPI {
			stats.BPI = fval
			stats.BPIIndex = i
		}
	}

	// Trailing zero-run intentionally discarded.

	return tokens, stats
}

// DecodeRLZE reconstructs an intensity vector of length bins from an RLZE
// token sequence.
//
// A positive token yields one literal intensity; a negative token -k yields k
// zero bins. Any bins remaining after the tokens are exhausted are zero. A
// zero token is tolerated as a single zero bin for compatibility with older
// writers that emitted explicit zeros.
//
// Parameters:
//   - tokens: RLZE token sequence from EncodeRLZE
//   - bins: Length of the reconstructed vector
//
// Returns:
//   - []T: Dense intensity vector of length bins
//   - error: errs.ErrCorruptData if the tokens reconstruct more than bins entries
func DecodeRLZE[T Intensity](tokens []T, bins int) ([]T, error) {
	if bins < 0 {
		return nil, fmt.Errorf("%w: negative bin count %d", errs.ErrInvalidArgument, bins)
	}

	intensities := make([]T, bins)
	pos := 0

	for _, tok := range tokens {
		switch {
		case tok > 0:
			if pos >= bins {
				return nil, fmt.Errorf("%w: token sequence reconstructs more than %d bins", errs.ErrCorruptData, bins)
			}
			intensities[pos] = tok
			pos++
		case tok < 0:
			run := int(-float64(tok))
			if pos+run > bins {
				return nil, fmt.Errorf("%w: zero run of %d at bin %d exceeds %d bins", errs.ErrCorruptData, run, pos, bins)
			}
			pos += run
		default:
			if pos >= bins {
				return nil, fmt.Errorf("%w: token sequence reconstructs more than %d bins", errs.ErrCorruptData, bins)
			}
			pos++
		}
	}

	return intensities, nil
}
