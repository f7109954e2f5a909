package renumber

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func openRenumberDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "renumber_test.db")
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE Frames (
			FrameNum INTEGER PRIMARY KEY,
			FrameType INTEGER NOT NULL,
			ScanCount INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE Scans (
			FrameNum INTEGER NOT NULL,
			ScanNum INTEGER NOT NULL,
			TIC REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (FrameNum, ScanNum)
		);
		CREATE TABLE Frame_Params (
			FrameNum INTEGER NOT NULL,
			ParamKey INTEGER NOT NULL,
			ParamValue TEXT NOT NULL,
			PRIMARY KEY (FrameNum, ParamKey)
		);
	`)
	require.NoError(t, err)

	return db
}

func seedFrame(t *testing.T, db *sql.DB, frameNum, frameType int) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO Frames (FrameNum, FrameType) VALUES (?, ?)`, frameNum, frameType)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO Scans (FrameNum, ScanNum, TIC) VALUES (?, 0, ?)`, frameNum, float64(frameNum))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO Frame_Params (FrameNum, ParamKey, ParamValue) VALUES (?, 1, ?)`, frameNum, frameNum)
	require.NoError(t, err)
}

func frameNumbers(t *testing.T, db *sql.DB, table string) []int {
	t.Helper()

	rows, err := db.Query(`SELECT DISTINCT FrameNum FROM ` + table + ` ORDER BY FrameNum`)
	require.NoError(t, err)
	defer rows.Close()

	var nums []int
	for rows.Next() {
		var num int
		require.NoError(t, rows.Scan(&num))
		nums = append(nums, num)
	}
	require.NoError(t, rows.Err())

	return nums
}

func TestRenumberer_GapClosure(t *testing.T) {
	db := openRenumberDB(t)
	ctx := context.Background()

	for _, num := range []int{5, 6, 8, 9} {
		seedFrame(t, db, num, 1)
	}

	shifts, err := New(db, zerolog.Nop()).Run(ctx)
	require.NoError(t, err)

	// Same delta for every frame, so a single batch despite the gap at 7.
	require.Equal(t, []Shift{{Delta: 4, Frames: "5-6, 8-9"}}, shifts)

	require.Equal(t, []int{1, 2, 3, 4}, frameNumbers(t, db, "Frames"))
	require.Equal(t, []int{1, 2, 3, 4}, frameNumbers(t, db, "Scans"))
	require.Equal(t, []int{1, 2, 3, 4}, frameNumbers(t, db, "Frame_Params"))
}

func TestRenumberer_RowsFollowTheirFrames(t *testing.T) {
	db := openRenumberDB(t)
	ctx := context.Background()

	seedFrame(t, db, 5, 1)
	seedFrame(t, db, 9, 2)

	_, err := New(db, zerolog.Nop()).Run(ctx)
	require.NoError(t, err)

	// Old frame 9's scan row, seeded with TIC 9, now lives under frame 2.
	var tic float64
	require.NoError(t, db.QueryRow(`SELECT TIC FROM Scans WHERE FrameNum = 2`).Scan(&tic))
	require.Equal(t, 9.0, tic)

	var frameType int
	require.NoError(t, db.QueryRow(`SELECT FrameType FROM Frames WHERE FrameNum = 2`).Scan(&frameType))
	require.Equal(t, 2, frameType)
}

func TestRenumberer_Identity(t *testing.T) {
	db := openRenumberDB(t)
	ctx := context.Background()

	for _, num := range []int{1, 2, 3} {
		seedFrame(t, db, num, 1)
	}

	shifts, err := New(db, zerolog.Nop()).Run(ctx)
	require.NoError(t, err)
	require.Nil(t, shifts)

	require.Equal(t, []int{1, 2, 3}, frameNumbers(t, db, "Frames"))
}

func TestRenumberer_CalibrationDeferral(t *testing.T) {
	db := openRenumberDB(t)
	ctx := context.Background()

	seedFrame(t, db, 1, 3) // calibration
	seedFrame(t, db, 2, 1)
	seedFrame(t, db, 3, 1)

	shifts, err := New(db, zerolog.Nop()).Run(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, shifts)

	// 2->1, 3->2, calibration 1->3.
	var frameType int
	require.NoError(t, db.QueryRow(`SELECT FrameType FROM Frames WHERE FrameNum = 3`).Scan(&frameType))
	require.Equal(t, 3, frameType)

	var tic float64
	require.NoError(t, db.QueryRow(`SELECT TIC FROM Scans WHERE FrameNum = 1`).Scan(&tic))
	require.Equal(t, 2.0, tic)

	require.Equal(t, []int{1, 2, 3}, frameNumbers(t, db, "Frames"))
}

func TestRenumberer_LegacyTableFollows(t *testing.T) {
	db := openRenumberDB(t)
	ctx := context.Background()

	_, err := db.Exec(`CREATE TABLE Frame_Parameters (FrameNum INTEGER PRIMARY KEY, Scans INTEGER)`)
	require.NoError(t, err)

	seedFrame(t, db, 4, 1)
	_, err = db.Exec(`INSERT INTO Frame_Parameters VALUES (4, 360)`)
	require.NoError(t, err)

	shifts, err := New(db, zerolog.Nop()).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, []Shift{{Delta: 3, Frames: "4"}}, shifts)

	require.Equal(t, []int{1}, frameNumbers(t, db, "Frame_Parameters"))
}

func TestRenumberer_EmptyDataset(t *testing.T) {
	db := openRenumberDB(t)

	shifts, err := New(db, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	require.Nil(t, shifts)
}
