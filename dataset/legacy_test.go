package dataset

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// createLegacyFile writes a dataset file carrying the pre-key/value schema:
// one fixed column per parameter in flat Global_Parameters and
// Frame_Parameters tables.
func createLegacyFile(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE Global_Parameters (
			DateStarted TEXT,
			NumFrames INTEGER,
			BinWidth REAL,
			Bins INTEGER
		);
		INSERT INTO Global_Parameters VALUES ('2018-11-02 14:00:00', 1, 0.25, 4000);

		CREATE TABLE Frame_Parameters (
			FrameNum INTEGER PRIMARY KEY,
			StartTime REAL,
			Accumulations INTEGER,
			FrameType INTEGER,
			Scans INTEGER
		);
		INSERT INTO Frame_Parameters VALUES (1, 0.0, 18, 1, 360);
	`)
	require.NoError(t, err)
}
