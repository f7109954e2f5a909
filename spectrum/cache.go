package spectrum

import (
	"fmt"

	"github.com/driftlab/imsf/compress"
	"github.com/driftlab/imsf/errs"
	"github.com/driftlab/imsf/format"
)

// ScanBlob is one stored scan payload handed to the cache by its loader.
type ScanBlob struct {
	ScanNum int
	Blob    []byte
}

// FrameLoader fetches the stored blobs of one frame in ascending scan order.
//
// The dataset package implements this against the scan table; tests supply
// in-memory loaders.
type FrameLoader interface {
	FrameScans(frameNum int) ([]ScanBlob, error)
}

// Entry is the decoded staging structure for one contiguous frame range.
//
// Scans is indexed by scan number; a nil map means the scan holds no
// non-zero intensity anywhere in the cached range. Summed pre-aggregates
// all scans so repeated whole-range queries skip the per-scan walk.
// FirstScan and LastScan bound the scans containing any non-zero intensity;
// both are -1 when the whole range is empty.
type Entry struct {
	StartFrame int
	EndFrame   int
	Scans      []map[int]float64
	Summed     map[int]float64
	FirstScan  int
	LastScan   int
}

// Cache stages decoded per-scan intensity maps for one contiguous frame
// range, so repeated reads over the same range decompress each blob once.
//
// A Cache instance holds at most one range. Requesting a different range
// drops and rebuilds the entry. The cache is NOT safe for concurrent use
// when a miss can trigger a rebuild; callers serialize access with a scoped
// exclusive acquisition (lock, Get, read, unlock).
type Cache struct {
	loader FrameLoader
	width  format.IntensityWidth
	bins   int
	codec  compress.Codec

	entry *Entry
}

// NewCache creates a cache over the given loader and codec parameters.
//
// Parameters:
//   - loader: Source of stored scan blobs per frame
//   - width: Intensity width the dataset was written at
//   - bins: Bin count of the dataset's spectra
//   - codec: Block compressor the blobs were written with
func NewCache(loader FrameLoader, width format.IntensityWidth, bins int, codec compress.Codec) *Cache {
	return &Cache{
		loader: loader,
		width:  width,
		bins:   bins,
		codec:  codec,
	}
}

// Get returns the cached entry for [startFrame, endFrame], rebuilding it if
// the cached range differs or nothing is cached yet.
//
// Intensities of the same (scan, bin) accumulate across the frame range, so
// the per-scan maps are the range-summed drift profile, not the last
// frame's.
//
// Returns:
//   - *Entry: Cached entry, owned by the cache; callers must not mutate it
//   - error: errs.ErrInvalidArgument on an inverted range, or a decode error
func (c *Cache) Get(startFrame, endFrame int) (*Entry, error) {
	if startFrame > endFrame || startFrame < 1 {
		return nil, fmt.Errorf("%w: frame range %d-%d", errs.ErrInvalidArgument, startFrame, endFrame)
	}

	if c.entry != nil && c.entry.StartFrame == startFrame && c.entry.EndFrame == endFrame {
		return c.entry, nil
	}

	entry, err := c.build(startFrame, endFrame)
	if err != nil {
		return nil, err
	}
	c.entry = entry

	return entry, nil
}

// Invalidate drops the cached entry so the next Get rebuilds.
func (c *Cache) Invalidate() {
	c.entry = nil
}

func (c *Cache) build(startFrame, endFrame int) (*Entry, error) {
	entry := &Entry{
		StartFrame: startFrame,
		EndFrame:   endFrame,
		Summed:     make(map[int]float64),
		FirstScan:  -1,
		LastScan:   -1,
	}

	for frameNum := startFrame; frameNum <= endFrame; frameNum++ {
		scans, err := c.loader.FrameScans(frameNum)
		if err != nil {
			return nil, fmt.Errorf("load frame %d scans: %w", frameNum, err)
		}

		for _, scan := range scans {
			scanNum := scan.ScanNum
			if scanNum < 0 {
				return nil, fmt.Errorf("%w: negative scan number %d in frame %d", errs.ErrCorruptData, scanNum, frameNum)
			}

			for len(entry.Scans) <= scanNum {
				entry.Scans = append(entry.Scans, nil)
			}

			err = EachPeak(scan.Blob, c.width, c.bins, c.codec, func(bin int, intensity float64) bool {
				if entry.Scans[scanNum] == nil {
					entry.Scans[scanNum] = make(map[int]float64)
				}
				entry.Scans[scanNum][bin] += intensity
				entry.Summed[bin] += intensity

				if entry.FirstScan == -1 || scanNum < entry.FirstScan {
					entry.FirstScan = scanNum
				}
				if scanNum > entry.LastScan {
					entry.LastScan = scanNum
				}

				return true
			})
			if err != nil {
				return nil, fmt.Errorf("decode frame %d scan %d: %w", frameNum, scanNum, err)
			}
		}
	}

	return entry, nil
}
