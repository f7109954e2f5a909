// Package imsf implements a file format for ion-mobility mass-spectrometry
// data: a dataset of time-ordered frames, each holding many drift-time
// scans, each scan holding a sparse intensity-versus-bin spectrum.
//
// Spectra are stored as run-length-zero-encoded token sequences, serialized
// little-endian at one of four numeric widths and block-compressed. A
// bin-major index can be derived from the frame-major data to answer
// mass-range queries without decoding every scan. Frame- and dataset-level
// metadata live in typed key/value parameter stores, with a migration path
// for datasets carrying the older fixed-column schema.
//
// # Basic Usage
//
// Creating a dataset and writing scans:
//
//	import "github.com/driftlab/imsf"
//
//	ds, _ := imsf.CreateDataset("run42.imsf", 98000,
//	    dataset.WithIntensityWidth(format.WidthInt32),
//	    dataset.WithCompression(format.CompressionLZ4),
//	)
//	defer ds.Close()
//
//	ds.InsertFrame(ctx, 1, format.FrameTypeMS1)
//	intensities := make([]int32, 98000)
//	intensities[5210] = 840
//	stats, _ := dataset.WriteScan(ctx, ds, 1, 0, 12.5, intensities)
//	fmt.Printf("tic=%.0f bpi=%.0f@%d\n", stats.TIC, stats.BPI, stats.BPIIndex)
//
// Reading back:
//
//	decoded, _ := dataset.ReadScan[int32](ctx, ds, 1, 0)
//
// Building and querying the bin-major index:
//
//	builder, _ := imsf.NewIndexBuilder(ds, logger)
//	builder.Rebuild(ctx)
//	points, _ := builder.Range(ctx, 5200, 5220)
//
// # Package Structure
//
// This package provides thin wrappers around the focused packages. Use
// encoding and spectrum directly for codec-level work, dataset for storage,
// binindex and renumber for the derived-index and maintenance operations.
package imsf

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/driftlab/imsf/binindex"
	"github.com/driftlab/imsf/compress"
	"github.com/driftlab/imsf/dataset"
	"github.com/driftlab/imsf/encoding"
	"github.com/driftlab/imsf/format"
	"github.com/driftlab/imsf/renumber"
	"github.com/driftlab/imsf/spectrum"
)

// CreateDataset creates a new dataset file with the given spectrum bin
// count. See dataset.Create for the available options.
func CreateDataset(path string, bins int, opts ...dataset.Option) (*dataset.Dataset, error) {
	return dataset.Create(path, bins, opts...)
}

// OpenDataset opens an existing dataset file, migrating legacy parameter
// schemas when present. See dataset.Open.
func OpenDataset(path string, opts ...dataset.Option) (*dataset.Dataset, error) {
	return dataset.Open(path, opts...)
}

// EncodeSpectrum encodes a dense intensity vector into its persisted blob
// form using the given compression, returning the blob and the summary
// statistics computed in the same pass.
func EncodeSpectrum[T encoding.Intensity](intensities []T, compression format.CompressionType) ([]byte, spectrum.Stats, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, spectrum.Stats{}, err
	}

	return spectrum.ToBlob(intensities, codec)
}

// DecodeSpectrum restores a dense intensity vector of length bins from a
// blob produced by EncodeSpectrum at the same width and compression.
func DecodeSpectrum[T encoding.Intensity](blob []byte, bins int, compression format.CompressionType) ([]T, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	return spectrum.FromBlob[T](blob, bins, codec)
}

// NewIndexBuilder creates a bin-major index builder over an open dataset.
func NewIndexBuilder(ds *dataset.Dataset, logger zerolog.Logger, opts ...binindex.Option) (*binindex.Builder, error) {
	codec, err := compress.GetCodec(ds.Compression())
	if err != nil {
		return nil, err
	}

	return binindex.NewBuilder(ds.DB(), ds, ds.Width(), ds.Bins(), codec, logger, opts...)
}

// RenumberFrames closes frame-number gaps in an open dataset and returns
// one shift record per applied batch. See renumber.Renumberer.
func RenumberFrames(ctx context.Context, ds *dataset.Dataset, logger zerolog.Logger) ([]renumber.Shift, error) {
	return renumber.New(ds.DB(), logger).Run(ctx)
}
