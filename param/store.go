package param

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/driftlab/imsf/errs"
)

// FrameStore manages frame-scoped parameters in the Frame_Params table.
// One row per (FrameNum, ParamKey); Set upserts, last write wins.
type FrameStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewFrameStore creates a frame parameter store on the given connection and
// ensures its table exists.
func NewFrameStore(db *sql.DB, logger zerolog.Logger) (*FrameStore, error) {
	store := &FrameStore{
		db:     db,
		logger: logger.With().Str("component", "frame-params").Logger(),
	}

	schema := `
	CREATE TABLE IF NOT EXISTS Frame_Params (
		FrameNum INTEGER NOT NULL,
		ParamKey INTEGER NOT NULL,
		ParamValue TEXT NOT NULL,
		PRIMARY KEY (FrameNum, ParamKey)
	);

	CREATE INDEX IF NOT EXISTS idx_frame_params_key ON Frame_Params(ParamKey);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create Frame_Params table: %w", err)
	}

	return store, nil
}

// Set upserts one parameter for one frame.
func (s *FrameStore) Set(ctx context.Context, frameNum int, key FrameParamKey, value string) error {
	if frameNum < 1 {
		return fmt.Errorf("%w: frame number %d", errs.ErrInvalidArgument, frameNum)
	}

	query := `
		INSERT INTO Frame_Params (FrameNum, ParamKey, ParamValue)
		VALUES (?, ?, ?)
		ON CONFLICT(FrameNum, ParamKey) DO UPDATE SET ParamValue = excluded.ParamValue
	`
	if _, err := s.db.ExecContext(ctx, query, frameNum, int(key), value); err != nil {
		return fmt.Errorf("set frame %d param %s: %w", frameNum, key, err)
	}

	return nil
}

// Has reports whether the frame has a value for the key.
func (s *FrameStore) Has(ctx context.Context, frameNum int, key FrameParamKey) bool {
	_, ok := s.Get(ctx, frameNum, key)
	return ok
}

// Get returns the stored text form of the parameter. The second return is
// false when the key is absent. Storage errors are logged and reported as
// absence; the typed accessors below turn that into the caller's default.
func (s *FrameStore) Get(ctx context.Context, frameNum int, key FrameParamKey) (string, bool) {
	var value string
	query := `SELECT ParamValue FROM Frame_Params WHERE FrameNum = ? AND ParamKey = ?`

	err := s.db.QueryRowContext(ctx, query, frameNum, int(key)).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		s.logger.Warn().Err(err).Int("frame", frameNum).Stringer("key", key).Msg("Frame param lookup failed")
		return "", false
	}

	return value, true
}

// GetString returns the parameter's text value, or def when absent.
func (s *FrameStore) GetString(ctx context.Context, frameNum int, key FrameParamKey, def string) string {
	value, ok := s.Get(ctx, frameNum, key)
	if !ok {
		return def
	}

	return value
}

// GetInt returns the parameter coerced to an integer, or def when the key is
// absent or the stored text does not parse.
func (s *FrameStore) GetInt(ctx context.Context, frameNum int, key FrameParamKey, def int) int {
	value, ok := s.Get(ctx, frameNum, key)
	if !ok {
		return def
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}

	return int(parsed)
}

// GetDouble returns the parameter coerced to a float, or def when the key is
// absent or the stored text does not parse.
func (s *FrameStore) GetDouble(ctx context.Context, frameNum int, key FrameParamKey, def float64) float64 {
	value, ok := s.Get(ctx, frameNum, key)
	if !ok {
		return def
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}

	return parsed
}

// GetDate returns the parameter parsed with DateLayout, or def when the key
// is absent or the stored text does not parse.
func (s *FrameStore) GetDate(ctx context.Context, frameNum int, key FrameParamKey, def time.Time) time.Time {
	value, ok := s.Get(ctx, frameNum, key)
	if !ok {
		return def
	}

	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return def
	}

	return parsed
}

// GlobalStore manages dataset-scoped parameters in the Global_Params table.
// One row per key; Set upserts, last write wins.
type GlobalStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewGlobalStore creates a global parameter store on the given connection and
// ensures its table exists.
func NewGlobalStore(db *sql.DB, logger zerolog.Logger) (*GlobalStore, error) {
	store := &GlobalStore{
		db:     db,
		logger: logger.With().Str("component", "global-params").Logger(),
	}

	schema := `
	CREATE TABLE IF NOT EXISTS Global_Params (
		ParamKey INTEGER PRIMARY KEY,
		ParamValue TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create Global_Params table: %w", err)
	}

	return store, nil
}

// Set upserts one dataset-level parameter.
func (s *GlobalStore) Set(ctx context.Context, key GlobalParamKey, value string) error {
	query := `
		INSERT INTO Global_Params (ParamKey, ParamValue)
		VALUES (?, ?)
		ON CONFLICT(ParamKey) DO UPDATE SET ParamValue = excluded.ParamValue
	`
	if _, err := s.db.ExecContext(ctx, query, int(key), value); err != nil {
		return fmt.Errorf("set global param %s: %w", key, err)
	}

	return nil
}

// Has reports whether the dataset has a value for the key.
func (s *GlobalStore) Has(ctx context.Context, key GlobalParamKey) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

// Get returns the stored text form of the parameter; false when absent.
func (s *GlobalStore) Get(ctx context.Context, key GlobalParamKey) (string, bool) {
	var value string
	query := `SELECT ParamValue FROM Global_Params WHERE ParamKey = ?`

	err := s.db.QueryRowContext(ctx, query, int(key)).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		s.logger.Warn().Err(err).Stringer("key", key).Msg("Global param lookup failed")
		return "", false
	}

	return value, true
}

// GetString returns the parameter's text value, or def when absent.
func (s *GlobalStore) GetString(ctx context.Context, key GlobalParamKey, def string) string {
	value, ok := s.Get(ctx, key)
	if !ok {
		return def
	}

	return value
}

// GetInt returns the parameter coerced to an integer, or def when the key is
// absent or the stored text does not parse.
func (s *GlobalStore) GetInt(ctx context.Context, key GlobalParamKey, def int) int {
	value, ok := s.Get(ctx, key)
	if !ok {
		return def
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}

	return int(parsed)
}

// GetDouble returns the parameter coerced to a float, or def when the key is
// absent or the stored text does not parse.
func (s *GlobalStore) GetDouble(ctx context.Context, key GlobalParamKey, def float64) float64 {
	value, ok := s.Get(ctx, key)
	if !ok {
		return def
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}

	return parsed
}

// GetDate returns the parameter parsed with DateLayout, or def when the key
// is absent or the stored text does not parse.
func (s *GlobalStore) GetDate(ctx context.Context, key GlobalParamKey, def time.Time) time.Time {
	value, ok := s.Get(ctx, key)
	if !ok {
		return def
	}

	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return def
	}

	return parsed
}
