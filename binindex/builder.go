package binindex

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/driftlab/imsf/compress"
	"github.com/driftlab/imsf/errs"
	"github.com/driftlab/imsf/format"
	"github.com/driftlab/imsf/internal/options"
	"github.com/driftlab/imsf/spectrum"
)

// DefaultFlushThreshold is the number of buffered index entries that
// triggers a flush to the staging table.
const DefaultFlushThreshold = 65536

// Source supplies the frame-major data the builder transforms. A
// dataset.Dataset satisfies it.
type Source interface {
	FrameNumbers(ctx context.Context) ([]int, error)
	FrameScans(frameNum int) ([]spectrum.ScanBlob, error)
}

// Entry is one non-zero intensity point in the bin-major representation.
type Entry struct {
	Bin       int
	FrameNum  int
	ScanNum   int
	Intensity float64
}

// Builder rebuilds the bin-major representation of a dataset.
//
// The rebuild streams frames in ascending order, decoding one scan at a
// time, and buffers entries into a staging table so peak memory stays
// bounded regardless of dataset size. The finished index replaces any prior
// one atomically; until that swap commits, the prior index stays
// authoritative. Readers of the index must not overlap a rebuild of the same
// dataset.
type Builder struct {
	db     *sql.DB
	src    Source
	width  format.IntensityWidth
	bins   int
	codec  compress.Codec
	logger zerolog.Logger

	flushThreshold int
}

// Option configures a Builder.
type Option = options.Option[*Builder]

// WithFlushThreshold overrides the entry count buffered in memory before
// flushing to the staging table.
func WithFlushThreshold(n int) Option {
	return options.New(func(b *Builder) error {
		if n < 1 {
			return fmt.Errorf("%w: flush threshold %d", errs.ErrInvalidArgument, n)
		}
		b.flushThreshold = n
		return nil
	})
}

// NewBuilder creates a builder over the given source and codec parameters.
// The db connection must point at the same dataset file the source reads.
func NewBuilder(db *sql.DB, src Source, width format.IntensityWidth, bins int, codec compress.Codec, logger zerolog.Logger, opts ...Option) (*Builder, error) {
	b := &Builder{
		db:             db,
		src:            src,
		width:          width,
		bins:           bins,
		codec:          codec,
		logger:         logger.With().Str("component", "bin-index").Logger(),
		flushThreshold: DefaultFlushThreshold,
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

// Rebuild builds the bin-major index from scratch and atomically replaces
// any prior one.
//
// On any failure the staging tables are dropped, the prior index is left
// untouched, and the error wraps errs.ErrRebuildFailed.
func (b *Builder) Rebuild(ctx context.Context) error {
	b.logger.Info().Msg("Bin index rebuild started")

	if err := b.rebuild(ctx); err != nil {
		b.dropStaging()
		b.logger.Error().Err(err).Msg("Bin index rebuild failed")
		return err
	}

	b.logger.Info().Msg("Bin index rebuild complete")
	return nil
}

func (b *Builder) rebuild(ctx context.Context) error {
	b.dropStaging()

	_, err := b.db.ExecContext(ctx, `
		CREATE TABLE Bin_Index_Staging (
			Bin INTEGER NOT NULL,
			FrameNum INTEGER NOT NULL,
			ScanNum INTEGER NOT NULL,
			Intensity REAL NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: create staging table: %v", errs.ErrRebuildFailed, err)
	}

	frames, err := b.src.FrameNumbers(ctx)
	if err != nil {
		return fmt.Errorf("%w: list frames: %v", errs.ErrRebuildFailed, err)
	}

	buffer := make([]Entry, 0, b.flushThreshold)
	total := 0

	for _, frameNum := range frames {
		scans, err := b.src.FrameScans(frameNum)
		if err != nil {
			return fmt.Errorf("%w: load frame %d: %v", errs.ErrRebuildFailed, frameNum, err)
		}

		for _, scan := range scans {
			scanNum := scan.ScanNum
			err := spectrum.EachPeak(scan.Blob, b.width, b.bins, b.codec, func(bin int, intensity float64) bool {
				buffer = append(buffer, Entry{Bin: bin, FrameNum: frameNum, ScanNum: scanNum, Intensity: intensity})
				return true
			})
			if err != nil {
				return fmt.Errorf("%w: decode frame %d scan %d: %v", errs.ErrRebuildFailed, frameNum, scanNum, err)
			}

			if len(buffer) >= b.flushThreshold {
				if err := b.flush(ctx, buffer); err != nil {
					return err
				}
				total += len(buffer)
				buffer = buffer[:0]
			}
		}
	}

	if len(buffer) > 0 {
		if err := b.flush(ctx, buffer); err != nil {
			return err
		}
		total += len(buffer)
	}

	if err := b.swap(ctx); err != nil {
		return err
	}

	b.logger.Debug().Int("entries", total).Int("frames", len(frames)).Msg("Bin index populated")
	return nil
}

// flush appends buffered entries to the staging table in one transaction.
func (b *Builder) flush(ctx context.Context, entries []Entry) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: flush: %v", errs.ErrRebuildFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO Bin_Index_Staging (Bin, FrameNum, ScanNum, Intensity) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: flush: %v", errs.ErrRebuildFailed, err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.ExecContext(ctx, entry.Bin, entry.FrameNum, entry.ScanNum, entry.Intensity); err != nil {
			return fmt.Errorf("%w: flush entry bin %d: %v", errs.ErrRebuildFailed, entry.Bin, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: flush: %v", errs.ErrRebuildFailed, err)
	}

	return nil
}

// swap sorts the staging table into the final layout and replaces the prior
// index in one transaction.
func (b *Builder) swap(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `
		CREATE TABLE Bin_Index_New (
			Bin INTEGER NOT NULL,
			FrameNum INTEGER NOT NULL,
			ScanNum INTEGER NOT NULL,
			Intensity REAL NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: create index table: %v", errs.ErrRebuildFailed, err)
	}

	// Sort order within a bin is a correctness requirement; range readers
	// rely on monotonic (FrameNum, ScanNum) ordering.
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO Bin_Index_New (Bin, FrameNum, ScanNum, Intensity)
		SELECT Bin, FrameNum, ScanNum, Intensity
		FROM Bin_Index_Staging
		ORDER BY Bin, FrameNum, ScanNum
	`)
	if err != nil {
		return fmt.Errorf("%w: sort index: %v", errs.ErrRebuildFailed, err)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: swap: %v", errs.ErrRebuildFailed, err)
	}
	defer tx.Rollback()

	swapDDL := []string{
		`DROP TABLE IF EXISTS Bin_Index`,
		`ALTER TABLE Bin_Index_New RENAME TO Bin_Index`,
		`CREATE INDEX idx_bin_index_bin ON Bin_Index(Bin)`,
		`DROP TABLE Bin_Index_Staging`,
	}
	for _, ddl := range swapDDL {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("%w: swap: %v", errs.ErrRebuildFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: swap: %v", errs.ErrRebuildFailed, err)
	}

	return nil
}

func (b *Builder) dropStaging() {
	for _, ddl := range []string{`DROP TABLE IF EXISTS Bin_Index_Staging`, `DROP TABLE IF EXISTS Bin_Index_New`} {
		if _, err := b.db.Exec(ddl); err != nil {
			b.logger.Warn().Err(err).Msg("Failed to drop staging table")
		}
	}
}
