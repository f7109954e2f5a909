// Package errs defines the sentinel errors shared across the imsf packages.
//
// Callers match these with errors.Is; call sites add context by wrapping:
//
//	return fmt.Errorf("%w: frame %d scan %d", errs.ErrCorruptData, frameNum, scanNum)
package errs

import "errors"

var (
	// ErrCorruptData indicates a stored blob violated a length or shape
	// invariant during decode.
	ErrCorruptData = errors.New("corrupt data")

	// ErrInvalidArgument indicates a malformed key, an out-of-range bin or
	// frame number, or another caller-supplied value that cannot be used.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSchemaMismatch indicates the legacy parameter migration encountered
	// a table layout it does not recognize.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrRebuildFailed indicates a bin-centric index rebuild aborted before
	// the atomic replace; the prior index, if any, remains authoritative.
	ErrRebuildFailed = errors.New("index rebuild failed")

	// ErrFrameNotFound indicates a lookup referenced a frame number that does
	// not exist in the dataset.
	ErrFrameNotFound = errors.New("frame not found")

	// ErrScanNotFound indicates a lookup referenced a scan that does not
	// exist within its frame.
	ErrScanNotFound = errors.New("scan not found")

	// ErrChecksumMismatch indicates a stored blob's content hash no longer
	// matches the hash recorded at write time.
	ErrChecksumMismatch = errors.New("blob checksum mismatch")
)
