// Package dataset implements the relational surface of the format: a single
// SQLite file holding frames, scans, and parameters.
//
// The write path encodes dense intensity vectors through the spectrum codec
// and stores the resulting blob with its summary statistics and an integrity
// checksum. The read path verifies the checksum and decodes back to a dense
// vector, or serves aggregate range queries from a staged decode cache.
//
// One dataset assumes a single writer and many readers; the connection is
// opened in WAL mode and writes serialize through one connection.
package dataset
