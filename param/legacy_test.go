package param

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/driftlab/imsf/errs"
)

func seedLegacyTables(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(`
		CREATE TABLE Global_Parameters (
			DateStarted TEXT,
			NumFrames INTEGER,
			TimeOffset INTEGER,
			BinWidth REAL,
			Bins INTEGER,
			Instrument TEXT
		);
		INSERT INTO Global_Parameters VALUES ('2019-06-12 08:00:00', 3, 10000, 0.25, 98000, 'IMS-legacy');

		CREATE TABLE Frame_Parameters (
			FrameNum INTEGER PRIMARY KEY,
			StartTime REAL,
			Duration REAL,
			Accumulations INTEGER,
			FrameType INTEGER,
			Scans INTEGER
		);
		INSERT INTO Frame_Parameters VALUES (1, 0.0, 0.5, 18, 1, 360);
		INSERT INTO Frame_Parameters VALUES (2, 0.5, 0.5, 18, 1, 360);
		INSERT INTO Frame_Parameters VALUES (3, 1.0, NULL, 18, 2, 360);
	`)
	require.NoError(t, err)
}

func TestMigrateLegacy_SynthesizesEntries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedLegacyTables(t, db)

	require.NoError(t, MigrateLegacy(ctx, db, zerolog.Nop()))

	globals, err := NewGlobalStore(db, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 3, globals.GetInt(ctx, GlobalParamNumFrames, 0))
	require.Equal(t, 0.25, globals.GetDouble(ctx, GlobalParamBinWidth, 0))
	require.Equal(t, 98000, globals.GetInt(ctx, GlobalParamBins, 0))
	require.Equal(t, "IMS-legacy", globals.GetString(ctx, GlobalParamInstrumentName, ""))

	frames, err := NewFrameStore(db, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 18, frames.GetInt(ctx, 1, FrameParamAccumulations, 0))
	require.Equal(t, 360, frames.GetInt(ctx, 2, FrameParamScans, 0))
	require.Equal(t, 2, frames.GetInt(ctx, 3, FrameParamFrameType, 0))
}

func TestMigrateLegacy_NullFieldsAbsentNotFatal(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedLegacyTables(t, db)

	require.NoError(t, MigrateLegacy(ctx, db, zerolog.Nop()))

	frames, err := NewFrameStore(db, zerolog.Nop())
	require.NoError(t, err)

	// Frame 3's NULL Duration stays absent; its other keys migrate.
	require.False(t, frames.Has(ctx, 3, FrameParamDuration))
	require.True(t, frames.Has(ctx, 3, FrameParamScans))
}

func TestMigrateLegacy_MissingColumnsSkipped(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// A legacy table with only a subset of the known columns.
	_, err := db.Exec(`
		CREATE TABLE Frame_Parameters (FrameNum INTEGER PRIMARY KEY, Scans INTEGER);
		INSERT INTO Frame_Parameters VALUES (1, 500);
	`)
	require.NoError(t, err)

	require.NoError(t, MigrateLegacy(ctx, db, zerolog.Nop()))

	frames, err := NewFrameStore(db, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 500, frames.GetInt(ctx, 1, FrameParamScans, 0))
	require.False(t, frames.Has(ctx, 1, FrameParamStartTime))
}

func TestMigrateLegacy_NoLegacyTablesNoOp(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, MigrateLegacy(context.Background(), db, zerolog.Nop()))
}

func TestMigrateLegacy_NoFrameNumColumn(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`CREATE TABLE Frame_Parameters (Scans INTEGER)`)
	require.NoError(t, err)

	err = MigrateLegacy(context.Background(), db, zerolog.Nop())
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}
