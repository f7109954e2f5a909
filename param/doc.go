// Package param implements the typed key/value parameter stores of a
// dataset: frame-scoped parameters (Frame_Params) and dataset-scoped
// parameters (Global_Params).
//
// Values persist as text and are coerced to int, float, date, or string on
// read; every typed getter takes a caller default and returns it on absence
// or parse failure instead of erroring. Keys are closed enumerations
// persisted by numeric value.
//
// Datasets predating the key/value schema carry one fixed column per
// parameter instead; DetectSchema recognizes them and MigrateLegacy
// synthesizes the equivalent key/value entries best-effort.
package param
