package dataset

// SummedSpectrum returns the bin-to-intensity map summed over every scan of
// the frame range [startFrame, endFrame].
//
// Repeated queries over the same range decode each blob once; the staged
// entry is rebuilt when the requested range changes and dropped whenever a
// write mutates scan data. The returned map is a copy the caller owns.
func (ds *Dataset) SummedSpectrum(startFrame, endFrame int) (map[int]float64, error) {
	ds.cacheMu.Lock()
	defer ds.cacheMu.Unlock()

	entry, err := ds.cache.Get(startFrame, endFrame)
	if err != nil {
		return nil, err
	}

	summed := make(map[int]float64, len(entry.Summed))
	for bin, intensity := range entry.Summed {
		summed[bin] = intensity
	}

	return summed, nil
}

// ScanSpectrum returns the range-summed bin-to-intensity map of one scan
// number across the frame range. The returned map is a copy; nil means the
// scan holds no non-zero intensity in the range.
func (ds *Dataset) ScanSpectrum(startFrame, endFrame, scanNum int) (map[int]float64, error) {
	ds.cacheMu.Lock()
	defer ds.cacheMu.Unlock()

	entry, err := ds.cache.Get(startFrame, endFrame)
	if err != nil {
		return nil, err
	}

	if scanNum < 0 || scanNum >= len(entry.Scans) || entry.Scans[scanNum] == nil {
		return nil, nil
	}

	profile := make(map[int]float64, len(entry.Scans[scanNum]))
	for bin, intensity := range entry.Scans[scanNum] {
		profile[bin] = intensity
	}

	return profile, nil
}

// ScanBounds returns the lowest and highest scan numbers holding any
// non-zero intensity in the frame range; both are -1 when the range is
// empty.
func (ds *Dataset) ScanBounds(startFrame, endFrame int) (first, last int, err error) {
	ds.cacheMu.Lock()
	defer ds.cacheMu.Unlock()

	entry, err := ds.cache.Get(startFrame, endFrame)
	if err != nil {
		return 0, 0, err
	}

	return entry.FirstScan, entry.LastScan, nil
}

func (ds *Dataset) invalidateCache() {
	ds.cacheMu.Lock()
	ds.cache.Invalidate()
	ds.cacheMu.Unlock()
}
