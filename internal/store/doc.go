// Package store owns the canonical event collection, persisted in SQLite.
//
// Writes go through Upsert, which matches candidates against stored rows by
// duplicate key so repeated extraction runs converge instead of accumulating,
// and sweeps out rows not re-observed within the retention window. Upsert
// batches are serialized behind an exclusive run lock; reads need no locking.
package store
