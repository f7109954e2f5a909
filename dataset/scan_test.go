package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftlab/imsf/errs"
	"github.com/driftlab/imsf/format"
)

func TestWriteScan_RoundTrip(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()

	require.NoError(t, ds.InsertFrame(ctx, 1, format.FrameTypeMS1))

	v := sparseVector(testBins, map[int]int32{10: 100, 500: 250, 1999: 3})
	stats, err := WriteScan(ctx, ds, 1, 0, 12.5, v)
	require.NoError(t, err)
	require.Equal(t, 3, stats.NonZeroCount)
	require.Equal(t, 353.0, stats.TIC)
	require.Equal(t, 250.0, stats.BPI)
	require.Equal(t, 500, stats.BPIIndex)

	decoded, err := ReadScan[int32](ctx, ds, 1, 0)
	require.NoError(t, err)
	require.Equal(t, v, decoded)

	info, err := ds.Scan(ctx, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 12.5, info.DriftTime)
	require.Equal(t, 3, info.NonZeroCount)
	require.Equal(t, 353.0, info.TIC)
	require.Equal(t, 250.0, info.BPI)
	require.Equal(t, 500, info.BPIBin)
}

func TestWriteScan_Validation(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()
	require.NoError(t, ds.InsertFrame(ctx, 1, format.FrameTypeMS1))

	// Wrong vector length.
	_, err := WriteScan(ctx, ds, 1, 0, 0, make([]int32, testBins-1))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	// Wrong intensity width for an int32 dataset.
	_, err = WriteScan(ctx, ds, 1, 0, 0, make([]float64, testBins))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	// Unknown frame.
	_, err = WriteScan(ctx, ds, 9, 0, 0, make([]int32, testBins))
	require.ErrorIs(t, err, errs.ErrFrameNotFound)

	// Negative scan number.
	_, err = WriteScan(ctx, ds, 1, -1, 0, make([]int32, testBins))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestWriteScan_FailureLeavesScanCountUntouched(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()
	require.NoError(t, ds.InsertFrame(ctx, 1, format.FrameTypeMS1))

	_, err := WriteScan(ctx, ds, 1, 0, 0, sparseVector(testBins, map[int]int32{1: 1}))
	require.NoError(t, err)

	// A duplicate scan number fails the insert and rolls back the counter.
	_, err = WriteScan(ctx, ds, 1, 0, 0, sparseVector(testBins, map[int]int32{1: 1}))
	require.Error(t, err)

	info, err := ds.Frame(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, info.ScanCount)
}

func TestRewriteScan_OverwritesInPlace(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()
	require.NoError(t, ds.InsertFrame(ctx, 1, format.FrameTypeMS1))

	_, err := WriteScan(ctx, ds, 1, 3, 1.0, sparseVector(testBins, map[int]int32{10: 5}))
	require.NoError(t, err)

	v := sparseVector(testBins, map[int]int32{20: 7, 30: 2})
	stats, err := RewriteScan(ctx, ds, 1, 3, 2.0, v)
	require.NoError(t, err)
	require.Equal(t, 2, stats.NonZeroCount)

	decoded, err := ReadScan[int32](ctx, ds, 1, 3)
	require.NoError(t, err)
	require.Equal(t, v, decoded)

	info, err := ds.Scan(ctx, 1, 3)
	require.NoError(t, err)
	require.Equal(t, 2.0, info.DriftTime)

	_, err = RewriteScan(ctx, ds, 1, 99, 0, v)
	require.ErrorIs(t, err, errs.ErrScanNotFound)
}

func TestReadScan_ChecksumMismatch(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()
	require.NoError(t, ds.InsertFrame(ctx, 1, format.FrameTypeMS1))

	_, err := WriteScan(ctx, ds, 1, 0, 0, sparseVector(testBins, map[int]int32{10: 5}))
	require.NoError(t, err)

	// Corrupt the stored blob behind the checksum's back.
	_, err = ds.DB().Exec(`UPDATE Scans SET Spectrum = X'DEADBEEF' WHERE FrameNum = 1 AND ScanNum = 0`)
	require.NoError(t, err)

	_, err = ReadScan[int32](ctx, ds, 1, 0)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)

	_, err = ds.FrameScans(1)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestReadScan_NotFound(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()

	_, err := ReadScan[int32](ctx, ds, 1, 0)
	require.ErrorIs(t, err, errs.ErrScanNotFound)

	_, err = ds.Scan(ctx, 1, 0)
	require.ErrorIs(t, err, errs.ErrScanNotFound)
}

func TestFrameScans_AscendingOrder(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()
	require.NoError(t, ds.InsertFrame(ctx, 1, format.FrameTypeMS1))

	for _, scanNum := range []int{4, 0, 2} {
		_, err := WriteScan(ctx, ds, 1, scanNum, 0, sparseVector(testBins, map[int]int32{scanNum: 1}))
		require.NoError(t, err)
	}

	scans, err := ds.FrameScans(1)
	require.NoError(t, err)
	require.Len(t, scans, 3)
	require.Equal(t, 0, scans[0].ScanNum)
	require.Equal(t, 2, scans[1].ScanNum)
	require.Equal(t, 4, scans[2].ScanNum)
}

func TestSummedSpectrum_AggregatesRange(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()

	for frame := 1; frame <= 2; frame++ {
		require.NoError(t, ds.InsertFrame(ctx, frame, format.FrameTypeMS1))
	}
	_, err := WriteScan(ctx, ds, 1, 2, 0, sparseVector(testBins, map[int]int32{10: 5, 20: 7}))
	require.NoError(t, err)
	_, err = WriteScan(ctx, ds, 2, 2, 0, sparseVector(testBins, map[int]int32{10: 3}))
	require.NoError(t, err)

	summed, err := ds.SummedSpectrum(1, 2)
	require.NoError(t, err)
	require.Equal(t, map[int]float64{10: 8, 20: 7}, summed)

	scan, err := ds.ScanSpectrum(1, 2, 2)
	require.NoError(t, err)
	require.Equal(t, map[int]float64{10: 8, 20: 7}, scan)

	missing, err := ds.ScanSpectrum(1, 2, 5)
	require.NoError(t, err)
	require.Nil(t, missing)

	first, last, err := ds.ScanBounds(1, 2)
	require.NoError(t, err)
	require.Equal(t, 2, first)
	require.Equal(t, 2, last)
}

func TestSummedSpectrum_InvalidatedByWrites(t *testing.T) {
	ds := createTestDataset(t)
	ctx := context.Background()
	require.NoError(t, ds.InsertFrame(ctx, 1, format.FrameTypeMS1))

	_, err := WriteScan(ctx, ds, 1, 0, 0, sparseVector(testBins, map[int]int32{10: 5}))
	require.NoError(t, err)

	summed, err := ds.SummedSpectrum(1, 1)
	require.NoError(t, err)
	require.Equal(t, map[int]float64{10: 5}, summed)

	_, err = RewriteScan(ctx, ds, 1, 0, 0, sparseVector(testBins, map[int]int32{30: 9}))
	require.NoError(t, err)

	summed, err = ds.SummedSpectrum(1, 1)
	require.NoError(t, err)
	require.Equal(t, map[int]float64{30: 9}, summed)
}
