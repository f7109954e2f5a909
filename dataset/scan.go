package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/driftlab/imsf/encoding"
	"github.com/driftlab/imsf/errs"
	"github.com/driftlab/imsf/spectrum"
)

// ScanInfo is the per-scan summary persisted alongside the blob.
type ScanInfo struct {
	FrameNum     int
	ScanNum      int
	DriftTime    float64
	NonZeroCount int
	TIC          float64
	BPI          float64
	BPIBin       int
}

// WriteScan encodes an intensity vector and stores it as one scan row.
//
// The vector length must equal the dataset's bin count and T must match the
// dataset's configured intensity width. The computed summary statistics are
// persisted on the row and returned.
func WriteScan[T encoding.Intensity](ctx context.Context, ds *Dataset, frameNum, scanNum int, driftTime float64, intensities []T) (spectrum.Stats, error) {
	blob, stats, err := encodeScan(ds, frameNum, intensities)
	if err != nil {
		return spectrum.Stats{}, err
	}
	if scanNum < 0 {
		return spectrum.Stats{}, fmt.Errorf("%w: scan number %d", errs.ErrInvalidArgument, scanNum)
	}

	tx, err := ds.db.BeginTx(ctx, nil)
	if err != nil {
		return spectrum.Stats{}, fmt.Errorf("write scan %d/%d: %w", frameNum, scanNum, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE Frames SET ScanCount = ScanCount + 1 WHERE FrameNum = ?`, frameNum)
	if err != nil {
		return spectrum.Stats{}, fmt.Errorf("write scan %d/%d: %w", frameNum, scanNum, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return spectrum.Stats{}, fmt.Errorf("%w: frame %d", errs.ErrFrameNotFound, frameNum)
	}

	query := `
		INSERT INTO Scans (FrameNum, ScanNum, DriftTime, NonZeroCount, TIC, BPI, BPIBin, Checksum, Spectrum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		frameNum, scanNum, driftTime,
		stats.NonZeroCount, stats.TIC, stats.BPI, stats.BPIIndex,
		int64(spectrum.Checksum(blob)), blob,
	)
	if err != nil {
		return spectrum.Stats{}, fmt.Errorf("write scan %d/%d: %w", frameNum, scanNum, err)
	}

	if err := tx.Commit(); err != nil {
		return spectrum.Stats{}, fmt.Errorf("write scan %d/%d: %w", frameNum, scanNum, err)
	}

	ds.invalidateCache()
	return stats, nil
}

// RewriteScan overwrites an existing scan's blob and statistics in place.
func RewriteScan[T encoding.Intensity](ctx context.Context, ds *Dataset, frameNum, scanNum int, driftTime float64, intensities []T) (spectrum.Stats, error) {
	blob, stats, err := encodeScan(ds, frameNum, intensities)
	if err != nil {
		return spectrum.Stats{}, err
	}

	query := `
		UPDATE Scans
		SET DriftTime = ?, NonZeroCount = ?, TIC = ?, BPI = ?, BPIBin = ?, Checksum = ?, Spectrum = ?
		WHERE FrameNum = ? AND ScanNum = ?
	`
	result, err := ds.db.ExecContext(ctx, query,
		driftTime, stats.NonZeroCount, stats.TIC, stats.BPI, stats.BPIIndex,
		int64(spectrum.Checksum(blob)), blob,
		frameNum, scanNum,
	)
	if err != nil {
		return spectrum.Stats{}, fmt.Errorf("rewrite scan %d/%d: %w", frameNum, scanNum, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return spectrum.Stats{}, fmt.Errorf("%w: scan %d/%d", errs.ErrScanNotFound, frameNum, scanNum)
	}

	ds.invalidateCache()
	return stats, nil
}

func encodeScan[T encoding.Intensity](ds *Dataset, frameNum int, intensities []T) ([]byte, spectrum.Stats, error) {
	if width := spectrum.WidthOf[T](); width != ds.width {
		return nil, spectrum.Stats{}, fmt.Errorf("%w: intensity width %s, dataset uses %s", errs.ErrInvalidArgument, width, ds.width)
	}
	if len(intensities) != ds.bins {
		return nil, spectrum.Stats{}, fmt.Errorf("%w: vector length %d, dataset has %d bins", errs.ErrInvalidArgument, len(intensities), ds.bins)
	}
	if frameNum < 1 {
		return nil, spectrum.Stats{}, fmt.Errorf("%w: frame number %d", errs.ErrInvalidArgument, frameNum)
	}

	return spectrum.ToBlob(intensities, ds.codec)
}

// ReadScan decodes one scan back into a dense intensity vector.
//
// The stored checksum is verified before decoding; a mismatch reports
// errs.ErrChecksumMismatch.
func ReadScan[T encoding.Intensity](ctx context.Context, ds *Dataset, frameNum, scanNum int) ([]T, error) {
	if width := spectrum.WidthOf[T](); width != ds.width {
		return nil, fmt.Errorf("%w: intensity width %s, dataset uses %s", errs.ErrInvalidArgument, width, ds.width)
	}

	blob, err := ds.scanBlob(ctx, frameNum, scanNum)
	if err != nil {
		return nil, err
	}

	intensities, err := spectrum.FromBlob[T](blob, ds.bins, ds.codec)
	if err != nil {
		return nil, fmt.Errorf("read scan %d/%d: %w", frameNum, scanNum, err)
	}

	return intensities, nil
}

func (ds *Dataset) scanBlob(ctx context.Context, frameNum, scanNum int) ([]byte, error) {
	var blob []byte
	var checksum int64

	query := `SELECT Spectrum, Checksum FROM Scans WHERE FrameNum = ? AND ScanNum = ?`
	err := ds.db.QueryRowContext(ctx, query, frameNum, scanNum).Scan(&blob, &checksum)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: scan %d/%d", errs.ErrScanNotFound, frameNum, scanNum)
	}
	if err != nil {
		return nil, fmt.Errorf("read scan %d/%d: %w", frameNum, scanNum, err)
	}

	if spectrum.Checksum(blob) != uint64(checksum) {
		return nil, fmt.Errorf("%w: scan %d/%d", errs.ErrChecksumMismatch, frameNum, scanNum)
	}

	return blob, nil
}

// Scan returns one scan's stored summary statistics.
func (ds *Dataset) Scan(ctx context.Context, frameNum, scanNum int) (ScanInfo, error) {
	info := ScanInfo{FrameNum: frameNum, ScanNum: scanNum}

	query := `
		SELECT DriftTime, NonZeroCount, TIC, BPI, BPIBin
		FROM Scans WHERE FrameNum = ? AND ScanNum = ?
	`
	err := ds.db.QueryRowContext(ctx, query, frameNum, scanNum).
		Scan(&info.DriftTime, &info.NonZeroCount, &info.TIC, &info.BPI, &info.BPIBin)
	if err == sql.ErrNoRows {
		return ScanInfo{}, fmt.Errorf("%w: scan %d/%d", errs.ErrScanNotFound, frameNum, scanNum)
	}
	if err != nil {
		return ScanInfo{}, fmt.Errorf("read scan %d/%d stats: %w", frameNum, scanNum, err)
	}

	return info, nil
}

// FrameScans returns a frame's stored blobs in ascending scan order,
// verifying each blob's checksum. It implements spectrum.FrameLoader for the
// range cache and the index builder.
func (ds *Dataset) FrameScans(frameNum int) ([]spectrum.ScanBlob, error) {
	query := `SELECT ScanNum, Checksum, Spectrum FROM Scans WHERE FrameNum = ? ORDER BY ScanNum`

	rows, err := ds.db.Query(query, frameNum)
	if err != nil {
		return nil, fmt.Errorf("load frame %d scans: %w", frameNum, err)
	}
	defer rows.Close()

	var scans []spectrum.ScanBlob
	for rows.Next() {
		var scan spectrum.ScanBlob
		var checksum int64
		if err := rows.Scan(&scan.ScanNum, &checksum, &scan.Blob); err != nil {
			return nil, fmt.Errorf("load frame %d scans: %w", frameNum, err)
		}
		if spectrum.Checksum(scan.Blob) != uint64(checksum) {
			return nil, fmt.Errorf("%w: scan %d/%d", errs.ErrChecksumMismatch, frameNum, scan.ScanNum)
		}
		scans = append(scans, scan)
	}

	return scans, rows.Err()
}
