package binindex

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/driftlab/imsf/errs"
)

// Exists reports whether a built index is present in the dataset.
func Exists(ctx context.Context, db *sql.DB) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'Bin_Index'`

	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return false, fmt.Errorf("probe bin index: %w", err)
	}

	return count > 0, nil
}

// Lookup returns every non-zero intensity point recorded for one bin,
// sorted ascending by (FrameNum, ScanNum).
func (b *Builder) Lookup(ctx context.Context, bin int) ([]Entry, error) {
	if bin < 0 || bin >= b.bins {
		return nil, fmt.Errorf("%w: bin %d of %d", errs.ErrInvalidArgument, bin, b.bins)
	}

	return b.query(ctx, bin, bin)
}

// Range returns every recorded point with loBin <= Bin <= hiBin, sorted
// ascending by (Bin, FrameNum, ScanNum).
func (b *Builder) Range(ctx context.Context, loBin, hiBin int) ([]Entry, error) {
	if loBin < 0 || hiBin >= b.bins || loBin > hiBin {
		return nil, fmt.Errorf("%w: bin range %d-%d of %d", errs.ErrInvalidArgument, loBin, hiBin, b.bins)
	}

	return b.query(ctx, loBin, hiBin)
}

func (b *Builder) query(ctx context.Context, loBin, hiBin int) ([]Entry, error) {
	query := `
		SELECT Bin, FrameNum, ScanNum, Intensity
		FROM Bin_Index
		WHERE Bin BETWEEN ? AND ?
		ORDER BY Bin, FrameNum, ScanNum
	`

	rows, err := b.db.QueryContext(ctx, query, loBin, hiBin)
	if err != nil {
		return nil, fmt.Errorf("query bin index %d-%d: %w", loBin, hiBin, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Bin, &entry.FrameNum, &entry.ScanNum, &entry.Intensity); err != nil {
			return nil, fmt.Errorf("scan bin index row: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
