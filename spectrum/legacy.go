package spectrum

import "github.com/driftlab/imsf/compress"

// EncodeInt32 is the older 32-bit entry point kept for writers that predate
// the width-generic codec. It produces blobs identical to ToBlob[int32] and
// returns only the non-zero count, which is all the legacy call sites read.
//
// Deprecated: Use ToBlob[int32] instead, which also returns the full
// summary statistics.
func EncodeInt32(intensities []int32, codec compress.Codec) ([]byte, int, error) {
	blob, stats, err := ToBlob(intensities, codec)
	if err != nil {
		return nil, 0, err
	}

	return blob, stats.NonZeroCount, nil
}
