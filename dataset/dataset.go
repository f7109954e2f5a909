package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/driftlab/imsf/compress"
	"github.com/driftlab/imsf/errs"
	"github.com/driftlab/imsf/format"
	"github.com/driftlab/imsf/param"
	"github.com/driftlab/imsf/spectrum"
)

// FormatVersion is the key/value schema generation written by Create.
const FormatVersion = 3

// Dataset is one ion-mobility dataset backed by a single SQLite file.
//
// The format assumes a single writer and many readers; the connection is
// opened in WAL mode with one writer connection, and no coordination across
// processes is attempted beyond SQLite's own locking.
type Dataset struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger

	width       format.IntensityWidth
	bins        int
	compression format.CompressionType
	codec       compress.Codec

	frameParams  *param.FrameStore
	globalParams *param.GlobalStore

	cacheMu sync.Mutex
	cache   *spectrum.Cache
}

// FrameInfo describes one frame row.
type FrameInfo struct {
	Num       int
	Type      format.FrameType
	ScanCount int
}

// Create creates a new dataset file with the given spectrum bin count.
//
// Defaults are 32-bit intensities and LZ4 compression; override with
// WithIntensityWidth and WithCompression. The bin count, width, and
// compression are recorded as global parameters and fixed for the life of
// the dataset.
func Create(path string, bins int, opts ...Option) (*Dataset, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bin count %d", errs.ErrInvalidArgument, bins)
	}

	ds := &Dataset{
		path:        path,
		logger:      zerolog.Nop(),
		width:       format.WidthInt32,
		bins:        bins,
		compression: format.CompressionLZ4,
	}
	if err := applyOptions(ds, opts); err != nil {
		return nil, err
	}

	if err := ds.open(); err != nil {
		return nil, err
	}

	if err := ds.initSchema(); err != nil {
		ds.db.Close()
		return nil, err
	}
	if err := ds.initStores(); err != nil {
		ds.db.Close()
		return nil, err
	}
	if err := ds.seedGlobals(context.Background()); err != nil {
		ds.db.Close()
		return nil, err
	}

	ds.logger.Info().
		Str("path", path).
		Int("bins", bins).
		Stringer("width", ds.width).
		Stringer("compression", ds.compression).
		Msg("Dataset created")

	return ds, nil
}

// Open opens an existing dataset file.
//
// The bin count, intensity width, and compression are read back from the
// global parameters. Datasets carrying the legacy fixed-column parameter
// schema are migrated to key/value entries first.
func Open(path string, opts ...Option) (*Dataset, error) {
	ds := &Dataset{
		path:   path,
		logger: zerolog.Nop(),
	}
	if err := applyOptions(ds, opts); err != nil {
		return nil, err
	}

	if err := ds.open(); err != nil {
		return nil, err
	}

	ctx := context.Background()

	variant, err := param.DetectSchema(ctx, ds.db)
	if err != nil {
		ds.db.Close()
		return nil, err
	}
	if variant == format.SchemaLegacyColumns {
		ds.logger.Info().Str("path", path).Msg("Migrating legacy parameter schema")
		if err := param.MigrateLegacy(ctx, ds.db, ds.logger); err != nil {
			ds.db.Close()
			return nil, err
		}
	}

	if err := ds.initSchema(); err != nil {
		ds.db.Close()
		return nil, err
	}
	if err := ds.initStores(); err != nil {
		ds.db.Close()
		return nil, err
	}
	if err := ds.loadGlobals(ctx); err != nil {
		ds.db.Close()
		return nil, err
	}

	ds.logger.Info().
		Str("path", path).
		Int("bins", ds.bins).
		Stringer("width", ds.width).
		Stringer("compression", ds.compression).
		Msg("Dataset opened")

	return ds, nil
}

func (ds *Dataset) open() error {
	db, err := sql.Open("sqlite3", ds.path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open dataset %s: %w", ds.path, err)
	}

	// SQLite supports one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ds.db = db
	return nil
}

func (ds *Dataset) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS Frames (
		FrameNum INTEGER PRIMARY KEY,
		FrameType INTEGER NOT NULL,
		ScanCount INTEGER NOT NULL DEFAULT 0,
		CreatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS Scans (
		FrameNum INTEGER NOT NULL,
		ScanNum INTEGER NOT NULL,
		DriftTime REAL NOT NULL DEFAULT 0,
		NonZeroCount INTEGER NOT NULL,
		TIC REAL NOT NULL,
		BPI REAL NOT NULL,
		BPIBin INTEGER NOT NULL,
		Checksum INTEGER NOT NULL,
		Spectrum BLOB NOT NULL,
		PRIMARY KEY (FrameNum, ScanNum)
	);
	`
	if _, err := ds.db.Exec(schema); err != nil {
		return fmt.Errorf("create dataset tables: %w", err)
	}

	return nil
}

func (ds *Dataset) initStores() error {
	frameParams, err := param.NewFrameStore(ds.db, ds.logger)
	if err != nil {
		return err
	}
	globalParams, err := param.NewGlobalStore(ds.db, ds.logger)
	if err != nil {
		return err
	}

	ds.frameParams = frameParams
	ds.globalParams = globalParams
	return nil
}

func (ds *Dataset) seedGlobals(ctx context.Context) error {
	if err := ds.resolveCodec(); err != nil {
		return err
	}

	seeds := []struct {
		key   param.GlobalParamKey
		value string
	}{
		{param.GlobalParamFormatVersion, strconv.Itoa(FormatVersion)},
		{param.GlobalParamBins, strconv.Itoa(ds.bins)},
		{param.GlobalParamIntensityWidth, strconv.Itoa(int(ds.width))},
		{param.GlobalParamCompression, strconv.Itoa(int(ds.compression))},
		{param.GlobalParamNumFrames, "0"},
		{param.GlobalParamDateStarted, time.Now().UTC().Format(param.DateLayout)},
	}
	for _, seed := range seeds {
		if err := ds.globalParams.Set(ctx, seed.key, seed.value); err != nil {
			return err
		}
	}

	return nil
}

func (ds *Dataset) loadGlobals(ctx context.Context) error {
	bins := ds.globalParams.GetInt(ctx, param.GlobalParamBins, 0)
	if bins <= 0 {
		return fmt.Errorf("%w: dataset %s has no bin count", errs.ErrSchemaMismatch, ds.path)
	}
	ds.bins = bins

	width := format.IntensityWidth(ds.globalParams.GetInt(ctx, param.GlobalParamIntensityWidth, int(format.WidthInt32)))
	if !width.Valid() {
		return fmt.Errorf("%w: dataset %s has invalid intensity width %d", errs.ErrSchemaMismatch, ds.path, width)
	}
	ds.width = width

	ds.compression = format.CompressionType(ds.globalParams.GetInt(ctx, param.GlobalParamCompression, int(format.CompressionLZ4)))

	return ds.resolveCodec()
}

func (ds *Dataset) resolveCodec() error {
	codec, err := compress.CreateCodec(ds.compression, "dataset")
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInvalidArgument, err)
	}

	ds.codec = codec
	ds.cache = spectrum.NewCache(ds, ds.width, ds.bins, codec)
	return nil
}

// Close closes the underlying database connection.
func (ds *Dataset) Close() error {
	return ds.db.Close()
}

// Path returns the dataset file path.
func (ds *Dataset) Path() string { return ds.path }

// Bins returns the spectrum bin count.
func (ds *Dataset) Bins() int { return ds.bins }

// Width returns the intensity width scans are stored at.
func (ds *Dataset) Width() format.IntensityWidth { return ds.width }

// Compression returns the block compression scans are stored with.
func (ds *Dataset) Compression() format.CompressionType { return ds.compression }

// DB exposes the underlying connection for the index builder and the
// renumberer, which operate on the same file.
func (ds *Dataset) DB() *sql.DB { return ds.db }

// FrameParams returns the frame-scoped parameter store.
func (ds *Dataset) FrameParams() *param.FrameStore { return ds.frameParams }

// GlobalParams returns the dataset-scoped parameter store.
func (ds *Dataset) GlobalParams() *param.GlobalStore { return ds.globalParams }

// InsertFrame creates a new, empty frame.
func (ds *Dataset) InsertFrame(ctx context.Context, frameNum int, frameType format.FrameType) error {
	if frameNum < 1 {
		return fmt.Errorf("%w: frame number %d", errs.ErrInvalidArgument, frameNum)
	}

	query := `INSERT INTO Frames (FrameNum, FrameType) VALUES (?, ?)`
	if _, err := ds.db.ExecContext(ctx, query, frameNum, int(frameType)); err != nil {
		return fmt.Errorf("insert frame %d: %w", frameNum, err)
	}

	return ds.refreshFrameCount(ctx)
}

// DeleteFrame removes a frame, its scans, and its parameters. Deleting
// frames leaves gaps in the numbering; the renumberer closes them.
func (ds *Dataset) DeleteFrame(ctx context.Context, frameNum int) error {
	result, err := ds.db.ExecContext(ctx, `DELETE FROM Frames WHERE FrameNum = ?`, frameNum)
	if err != nil {
		return fmt.Errorf("delete frame %d: %w", frameNum, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: frame %d", errs.ErrFrameNotFound, frameNum)
	}

	if _, err := ds.db.ExecContext(ctx, `DELETE FROM Scans WHERE FrameNum = ?`, frameNum); err != nil {
		return fmt.Errorf("delete frame %d scans: %w", frameNum, err)
	}
	if _, err := ds.db.ExecContext(ctx, `DELETE FROM Frame_Params WHERE FrameNum = ?`, frameNum); err != nil {
		return fmt.Errorf("delete frame %d params: %w", frameNum, err)
	}

	ds.invalidateCache()
	ds.logger.Debug().Int("frame", frameNum).Msg("Frame deleted")

	return ds.refreshFrameCount(ctx)
}

// Frames returns all frames in ascending frame-number order.
func (ds *Dataset) Frames(ctx context.Context) ([]FrameInfo, error) {
	query := `SELECT FrameNum, FrameType, ScanCount FROM Frames ORDER BY FrameNum`

	rows, err := ds.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var frames []FrameInfo
	for rows.Next() {
		var info FrameInfo
		var frameType int
		if err := rows.Scan(&info.Num, &frameType, &info.ScanCount); err != nil {
			return nil, fmt.Errorf("scan frame row: %w", err)
		}
		info.Type = format.FrameType(frameType)
		frames = append(frames, info)
	}

	return frames, rows.Err()
}

// FrameNumbers returns the distinct frame numbers in ascending order.
func (ds *Dataset) FrameNumbers(ctx context.Context) ([]int, error) {
	frames, err := ds.Frames(ctx)
	if err != nil {
		return nil, err
	}

	nums := make([]int, len(frames))
	for i, frame := range frames {
		nums[i] = frame.Num
	}

	return nums, nil
}

// FrameCount returns the number of frames.
func (ds *Dataset) FrameCount(ctx context.Context) (int, error) {
	var count int
	if err := ds.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Frames`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}

	return count, nil
}

// Frame returns one frame's metadata.
func (ds *Dataset) Frame(ctx context.Context, frameNum int) (FrameInfo, error) {
	var info FrameInfo
	var frameType int

	query := `SELECT FrameNum, FrameType, ScanCount FROM Frames WHERE FrameNum = ?`
	err := ds.db.QueryRowContext(ctx, query, frameNum).Scan(&info.Num, &frameType, &info.ScanCount)
	if err == sql.ErrNoRows {
		return FrameInfo{}, fmt.Errorf("%w: frame %d", errs.ErrFrameNotFound, frameNum)
	}
	if err != nil {
		return FrameInfo{}, fmt.Errorf("read frame %d: %w", frameNum, err)
	}

	info.Type = format.FrameType(frameType)
	return info, nil
}

func (ds *Dataset) refreshFrameCount(ctx context.Context) error {
	count, err := ds.FrameCount(ctx)
	if err != nil {
		return err
	}

	return ds.globalParams.Set(ctx, param.GlobalParamNumFrames, strconv.Itoa(count))
}
