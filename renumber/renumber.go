// Package renumber rewrites frame numbers dataset-wide so they are gap-free
// starting at 1, batching contiguous-shift ranges into bulk updates inside
// one transaction.
package renumber

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/driftlab/imsf/format"
)

// frameTables are the frame-scoped tables rewritten by a renumber, checked
// for presence at run time. Frame_Parameters only exists on legacy datasets.
var frameTables = []string{"Frames", "Scans", "Frame_Params", "Frame_Parameters"}

// Renumberer closes frame-number gaps left by frame deletion.
type Renumberer struct {
	db     *sql.DB
	logger zerolog.Logger
}

// New creates a renumberer on the given dataset connection.
func New(db *sql.DB, logger zerolog.Logger) *Renumberer {
	return &Renumberer{
		db:     db,
		logger: logger.With().Str("component", "renumber").Logger(),
	}
}

// Run renumbers every frame-scoped record so frame numbers run 1..N without
// gaps, deferring a leading calibration frame per BuildMapping.
//
// All batches apply inside a single transaction; a failure rolls the whole
// renumber back. The returned shifts describe each applied batch for audit
// logging, nil when the numbering was already gap-free.
func (r *Renumberer) Run(ctx context.Context) ([]Shift, error) {
	frames, err := r.loadFrames(ctx)
	if err != nil {
		return nil, err
	}

	mapping := BuildMapping(frames)
	if isIdentity(mapping) {
		r.logger.Debug().Int("frames", len(frames)).Msg("Frame numbering already contiguous")
		return nil, nil
	}

	batches := coalesce(mapping)

	tables, err := r.presentTables(ctx)
	if err != nil {
		return nil, err
	}

	shifts, err := r.apply(ctx, frames, batches, tables)
	if err != nil {
		return nil, err
	}

	for _, shift := range shifts {
		r.logger.Info().Int("delta", shift.Delta).Str("frames", shift.Frames).Msg("Frames renumbered")
	}

	return shifts, nil
}

func (r *Renumberer) loadFrames(ctx context.Context) ([]Frame, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT FrameNum, FrameType FROM Frames ORDER BY FrameNum`)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var frame Frame
		var frameType int
		if err := rows.Scan(&frame.Num, &frameType); err != nil {
			return nil, fmt.Errorf("scan frame row: %w", err)
		}
		frame.Type = format.FrameType(frameType)
		frames = append(frames, frame)
	}

	return frames, rows.Err()
}

func (r *Renumberer) presentTables(ctx context.Context) ([]string, error) {
	var present []string
	for _, table := range frameTables {
		var count int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
		if err := r.db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
			return nil, fmt.Errorf("probe table %s: %w", table, err)
		}
		if count > 0 {
			present = append(present, table)
		}
	}

	return present, nil
}

// apply performs every batch inside one transaction. Moves route through a
// temporary high number range (new number + offset) so an in-flight move
// can never collide with a frame that has not moved yet; a final pass
// subtracts the offset.
func (r *Renumberer) apply(ctx context.Context, frames []Frame, batches []batch, tables []string) ([]Shift, error) {
	offset := 0
	for _, frame := range frames {
		if frame.Num > offset {
			offset = frame.Num
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("renumber frames: %w", err)
	}
	defer tx.Rollback()

	shifts := make([]Shift, 0, len(batches))
	for _, b := range batches {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(b.oldNums)), ", ")
		args := make([]any, 0, len(b.oldNums)+2)
		args = append(args, b.delta, offset)
		for _, old := range b.oldNums {
			args = append(args, old)
		}

		for _, table := range tables {
			query := fmt.Sprintf(`UPDATE %s SET FrameNum = FrameNum - ? + ? WHERE FrameNum IN (%s)`, table, placeholders)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return nil, fmt.Errorf("renumber %s batch %s: %w", table, formatRanges(b.oldNums), err)
			}
		}

		shifts = append(shifts, Shift{Delta: b.delta, Frames: formatRanges(b.oldNums)})
	}

	for _, table := range tables {
		query := fmt.Sprintf(`UPDATE %s SET FrameNum = FrameNum - ? WHERE FrameNum > ?`, table)
		if _, err := tx.ExecContext(ctx, query, offset, offset); err != nil {
			return nil, fmt.Errorf("renumber %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("renumber frames: %w", err)
	}

	return shifts, nil
}
