package dataset

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/driftlab/imsf/errs"
	"github.com/driftlab/imsf/format"
	"github.com/driftlab/imsf/internal/options"
)

// Option configures a Dataset at Create or Open time.
type Option = options.Option[*Dataset]

func applyOptions(ds *Dataset, opts []Option) error {
	return options.Apply(ds, opts...)
}

// WithIntensityWidth sets the numeric width scans are encoded at. Only
// meaningful on Create; Open reads the width back from the global
// parameters.
func WithIntensityWidth(width format.IntensityWidth) Option {
	return options.New(func(ds *Dataset) error {
		if !width.Valid() {
			return fmt.Errorf("%w: intensity width %d", errs.ErrInvalidArgument, width)
		}
		ds.width = width
		return nil
	})
}

// WithCompression sets the block compression scan blobs are stored with.
// Only meaningful on Create; Open reads the compression back from the
// global parameters.
func WithCompression(compression format.CompressionType) Option {
	return options.NoError(func(ds *Dataset) {
		ds.compression = compression
	})
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(ds *Dataset) {
		ds.logger = logger
	})
}
