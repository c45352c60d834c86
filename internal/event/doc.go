// Package event provides the types and pure functions at the heart of the
// listing pipeline: raw extraction candidates, canonical persisted events,
// date-text normalization, duplicate-key derivation, and display annotation.
//
// Everything here is free of I/O and takes the current time as an explicit
// parameter, so date resolution, dedup and badge logic are testable without
// wall-clock dependence.
package event
