package param

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/driftlab/imsf/errs"
	"github.com/driftlab/imsf/format"
)

// legacyFrameKeys are the frame parameters the flat legacy schema stores as
// one fixed column each. Column names match FrameParamKey.String().
var legacyFrameKeys = []FrameParamKey{
	FrameParamStartTime,
	FrameParamDuration,
	FrameParamAccumulations,
	FrameParamFrameType,
	FrameParamScans,
	FrameParamCalibrationSlope,
	FrameParamCalibrationIntercept,
	FrameParamPressureFront,
	FrameParamPressureBack,
	FrameParamTemperature,
}

// legacyGlobalColumns maps legacy Global_Parameters column names to their
// key/value equivalents.
var legacyGlobalColumns = map[string]GlobalParamKey{
	"DateStarted": GlobalParamDateStarted,
	"NumFrames":   GlobalParamNumFrames,
	"TimeOffset":  GlobalParamTimeOffset,
	"BinWidth":    GlobalParamBinWidth,
	"Bins":        GlobalParamBins,
	"Instrument":  GlobalParamInstrumentName,
}

// DetectSchema probes the dataset once at open time and reports which
// parameter schema it carries. A dataset with neither table is treated as
// key/value; the tables are created on first use.
func DetectSchema(ctx context.Context, db *sql.DB) (format.SchemaVariant, error) {
	hasKV, err := tableExists(ctx, db, "Frame_Params")
	if err != nil {
		return 0, err
	}
	if hasKV {
		return format.SchemaKeyValue, nil
	}

	hasLegacy, err := tableExists(ctx, db, "Frame_Parameters")
	if err != nil {
		return 0, err
	}
	if hasLegacy {
		return format.SchemaLegacyColumns, nil
	}

	return format.SchemaKeyValue, nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

	if err := db.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("probe table %s: %w", name, err)
	}

	return count > 0, nil
}

// MigrateLegacy synthesizes key/value parameter entries from the legacy
// fixed-column tables. Migration is best-effort per key: a column that is
// missing, NULL, or unreadable leaves that key absent and moves on. Only a
// structurally unusable legacy table (no FrameNum column) is fatal.
func MigrateLegacy(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "param-migration").Logger()

	frames, err := NewFrameStore(db, logger)
	if err != nil {
		return err
	}
	globals, err := NewGlobalStore(db, logger)
	if err != nil {
		return err
	}

	if err := migrateLegacyGlobals(ctx, db, globals, logger); err != nil {
		return err
	}
	if err := migrateLegacyFrames(ctx, db, frames, logger); err != nil {
		return err
	}

	logger.Info().Msg("Legacy parameter migration complete")
	return nil
}

func migrateLegacyGlobals(ctx context.Context, db *sql.DB, globals *GlobalStore, logger zerolog.Logger) error {
	exists, err := tableExists(ctx, db, "Global_Parameters")
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	columns, err := tableColumns(ctx, db, "Global_Parameters")
	if err != nil {
		return err
	}

	for column, key := range legacyGlobalColumns {
		if !columns[column] {
			continue
		}

		var value sql.NullString
		query := fmt.Sprintf(`SELECT %s FROM Global_Parameters LIMIT 1`, column)
		if err := db.QueryRowContext(ctx, query).Scan(&value); err != nil || !value.Valid {
			logger.Debug().Err(err).Str("column", column).Msg("Skipping unreadable legacy global")
			continue
		}

		if err := globals.Set(ctx, key, value.String); err != nil {
			return err
		}
	}

	return nil
}

func migrateLegacyFrames(ctx context.Context, db *sql.DB, frames *FrameStore, logger zerolog.Logger) error {
	exists, err := tableExists(ctx, db, "Frame_Parameters")
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	columns, err := tableColumns(ctx, db, "Frame_Parameters")
	if err != nil {
		return err
	}
	if !columns["FrameNum"] {
		return fmt.Errorf("%w: Frame_Parameters has no FrameNum column", errs.ErrSchemaMismatch)
	}

	// Column-major walk: one legacy column at a time, so one bad column
	// leaves only that key absent across all frames.
	for _, key := range legacyFrameKeys {
		column := key.String()
		if !columns[column] {
			continue
		}

		if err := migrateLegacyFrameColumn(ctx, db, frames, key, column, logger); err != nil {
			logger.Debug().Err(err).Str("column", column).Msg("Skipping unreadable legacy frame column")
		}
	}

	return nil
}

func migrateLegacyFrameColumn(ctx context.Context, db *sql.DB, frames *FrameStore, key FrameParamKey, column string, logger zerolog.Logger) error {
	query := fmt.Sprintf(`SELECT FrameNum, %s FROM Frame_Parameters ORDER BY FrameNum`, column)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var frameNum int
		var value sql.NullString

		if err := rows.Scan(&frameNum, &value); err != nil {
			logger.Debug().Err(err).Str("column", column).Msg("Skipping unreadable legacy frame value")
			continue
		}
		if !value.Valid {
			continue
		}

		if err := frames.Set(ctx, frameNum, key, value.String); err != nil {
			return err
		}
	}

	return rows.Err()
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			typ        string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		columns[name] = true
	}

	return columns, rows.Err()
}
